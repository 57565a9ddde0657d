// Package calendar wraps the Google Calendar API for the operations the task
// router dispatches: creating (possibly recurring) events, listing a day's
// schedule, and computing free slots from free/busy data. The free-gap sweep
// and the recurrence-rule derivation are pure functions, kept separate from
// the API client so they can be tested without credentials.
package calendar
