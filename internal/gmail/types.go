package gmail

// EmailSummary is a subject plus the short snippet Gmail provides for a
// message. It is the shape every listing operation returns.
type EmailSummary struct {
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// SentEmail confirms a sent message.
type SentEmail struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
}
