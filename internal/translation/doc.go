// Package translation provides the translation providers used for each
// question row: the public Google Translate endpoint, OpenAI chat models
// and Gemini. It also provides a circuit breaker that stops calling a
// provider after repeated consecutive failures.
package translation
