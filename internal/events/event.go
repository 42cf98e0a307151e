package events

// RejectionEvent describes a submission blocked by the contact policy.
// Identifiers and text are hashed before they reach an emitter.
type RejectionEvent struct {
	Timestamp string `json:"timestamp"` // RFC3339
	RequestID string `json:"request_id"`
	UserHash  string `json:"user_hash"`
	Resource  string `json:"resource"` // job | comment
	Field     string `json:"field"`
	Ruleset   string `json:"ruleset"` // narrow | broad
	Rule      string `json:"rule"`    // email | phone | social | url
	TextHash  string `json:"text_hash"`
}
