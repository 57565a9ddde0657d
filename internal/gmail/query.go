package gmail

import "time"

// AfterQuery returns a Gmail search query matching messages received on or
// after date. Gmail's query language wants slash-separated dates.
func AfterQuery(date time.Time) string {
	return "after:" + date.Format("2006/01/02")
}

// UnreadAfterQuery returns a query matching unread messages received on or
// after date.
func UnreadAfterQuery(date time.Time) string {
	return "is:unread " + AfterQuery(date)
}
