// Package llm implements the intent extractor: a thin client for the Gemini
// generateContent REST API plus the prompt that teaches the model the action
// schema. The extractor sends one prompt per task and returns the raw model
// text; all interpretation of that text lives in the intent package.
package llm
