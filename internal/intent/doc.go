// Package intent defines the closed action schema shared with the language
// model and the parser that turns raw model replies into structured intents.
//
// The model is instructed to reply either with free conversational text or
// with a single JSON object matching the Intent schema. The parser in this
// package classifies every raw reply into one of four outcomes: a plain
// message, a complete intent, an incomplete intent (missing fields), or a
// parse error.
package intent
