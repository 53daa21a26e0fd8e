// Package models lists the OpenAI chat models that can be passed to
// --openai-model for the openai translation provider.
package models
