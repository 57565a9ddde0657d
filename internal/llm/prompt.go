package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/jvoss/taskpilot/internal/intent"
)

// promptTemplate is the extraction contract shared with the model. It embeds
// today's date, enumerates the action schema, gives one complete and one
// incomplete example, and forbids mixing prose with JSON.
const promptTemplate = `You are a smart assistant. Today's date is %s.

If the user asks something casual, general, or conversational
(e.g. "How was my day?", "Tell me a joke", "What's new in tech?"),
reply with a short natural message.

If the user gives a task to be executed, respond ONLY with a valid JSON object:
- action: one of %s
- person: string or null
- email: string or null
- date_time: ISO 8601 datetime (for scheduling) OR date only (for checking)
- repeat: "none" | "daily" | "weekly" | "monthly"
- missing_fields: list of fields not present in the user input (e.g. ["email", "date_time"])
- subject: string (write a short default if not given)
- body: string
- query: string

Examples:
If everything is present:
{
  "action": "schedule_call",
  "person": "Prachi",
  "email": "prachi@example.com",
  "date_time": "%s",
  "repeat": "none",
  "missing_fields": []
}

If something is missing:
{
  "action": "schedule_call",
  "person": "Prachi",
  "email": null,
  "date_time": null,
  "repeat": "none",
  "missing_fields": ["email", "date_time"]
}

If it's not a task at all, just respond with a short human-friendly message.
DO NOT mix natural text and JSON together.

User input:
%q`

// BuildPrompt renders the extraction prompt for one task. today anchors the
// model's relative-date reasoning and must be the caller's notion of "now"
// in the configured timezone.
func BuildPrompt(task string, today time.Time) string {
	actions := make([]string, 0, len(intent.KnownActions()))
	for _, a := range intent.KnownActions() {
		actions = append(actions, fmt.Sprintf("%q", string(a)))
	}

	// Example datetime a week out from today, so the example stays plausible
	// relative to the embedded date.
	example := today.AddDate(0, 0, 7).Format("2006-01-02") + "T18:00:00"

	return fmt.Sprintf(promptTemplate,
		today.Format("2006-01-02"),
		strings.Join(actions, " | "),
		example,
		task,
	)
}
