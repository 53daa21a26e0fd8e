// Package processor contains the core loop of transquery. It loads the
// questions sheet, translates every row in order with the configured
// provider, applies the failure policy, records rows in the journal when
// one is open, and writes the augmented sheet.
package processor
