// Package gmail wraps the Gmail API for the mail operations the task router
// dispatches: listing and summarizing messages by query, and sending plain
// text email. Search queries use Gmail's query language; the helpers in
// query.go build the date-bounded and unread variants the router needs.
package gmail
