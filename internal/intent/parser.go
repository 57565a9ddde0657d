package intent

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Kind classifies a parser outcome.
type Kind int

const (
	// KindMessage means the reply contained no JSON object and is a plain
	// conversational message.
	KindMessage Kind = iota
	// KindIntent means a complete intent was decoded and may be dispatched.
	KindIntent
	// KindNeedsInfo means a valid intent was decoded but the model reported
	// missing fields; it must not be dispatched.
	KindNeedsInfo
	// KindError means the reply contained JSON that could not be decoded.
	KindError
)

// Result is the outcome of parsing one raw model reply.
type Result struct {
	Kind Kind

	// Message holds the conversational text for KindMessage, or the
	// human-readable missing-fields sentence for KindNeedsInfo.
	Message string

	// Intent is the decoded object for KindIntent, and the partial object
	// for KindNeedsInfo. Nil otherwise.
	Intent *Intent

	// Missing lists the field names the model reported absent, in the order
	// the model gave them. Set only for KindNeedsInfo.
	Missing []string

	// Raw is the original reply text, preserved verbatim for every outcome
	// so failures stay debuggable.
	Raw string

	// Err is the JSON decode error for KindError.
	Err error
}

// Parser extracts a single JSON object from raw model text. The zero value
// uses the structural brace scanner with no repair pass and is ready to use.
// Parsers are stateless; Parse may be called concurrently.
type Parser struct {
	// Greedy selects the permissive extraction strategy: everything between
	// the first '{' and the last '}' is treated as the candidate object.
	// This mirrors the behavior of regex-based extraction and can swallow
	// trailing prose containing braces. The default structural scanner stops
	// at the matching close brace of the first object instead.
	Greedy bool

	// Repair enables a jsonrepair pass when the candidate fails to decode,
	// recovering from the small syntax slips models make (trailing commas,
	// single quotes, unquoted keys). The decode error is still surfaced if
	// repair does not help.
	Repair bool
}

// Parse classifies raw model text into a message, an intent, a needs-info
// outcome, or a parse error.
func (p Parser) Parse(raw string) Result {
	trimmed := strings.TrimSpace(raw)

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return Result{Kind: KindMessage, Message: trimmed, Raw: raw}
	}

	candidate := p.extract(trimmed[start:])

	var in Intent
	err := json.Unmarshal([]byte(candidate), &in)
	if err != nil && p.Repair {
		if repaired, rerr := jsonrepair.JSONRepair(candidate); rerr == nil {
			if uerr := json.Unmarshal([]byte(repaired), &in); uerr == nil {
				err = nil
			}
		}
	}
	if err != nil {
		return Result{Kind: KindError, Raw: raw, Err: err}
	}

	in.Repeat = in.Repeat.Normalize()

	if len(in.MissingFields) > 0 {
		return Result{
			Kind:    KindNeedsInfo,
			Message: "To proceed, I need: " + strings.Join(in.MissingFields, ", ") + ".",
			Intent:  &in,
			Missing: in.MissingFields,
			Raw:     raw,
		}
	}

	return Result{Kind: KindIntent, Intent: &in, Raw: raw}
}

// extract returns the candidate JSON object from text, which starts at a '{'.
func (p Parser) extract(text string) string {
	if p.Greedy {
		if end := strings.LastIndexByte(text, '}'); end >= 0 {
			return text[:end+1]
		}
		return text
	}
	return scanObject(text)
}

// scanObject walks text from its leading '{' tracking brace depth, skipping
// braces inside JSON string literals, and returns the slice up to and
// including the matching close brace. If the object is unterminated the
// whole text is returned and the decoder reports the failure.
func scanObject(text string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}
