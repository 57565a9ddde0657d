// Package router is the core of taskpilot: it turns one free-text task into
// one normalized result envelope. Route runs the sequential pipeline of
// intent extraction (LLM), response parsing, and action dispatch against the
// calendar and mail collaborators. Every outcome, from a casual chat reply
// to a downstream API failure, is expressed as an Envelope with an
// enumerated Status; nothing escapes the dispatch boundary as an error.
package router
