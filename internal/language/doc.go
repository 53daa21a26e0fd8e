// Package language holds the static tables that map the language names
// accepted on the command line to the codes understood by the translation
// providers. There is one table for source languages and one for pivot
// languages.
package language
