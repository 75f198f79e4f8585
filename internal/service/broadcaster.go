package service

// Broadcaster pushes live events to connected admin dashboards (avoids import cycle with ws)
type Broadcaster interface {
	BroadcastToAdmins(msgType string, payload interface{})
}

// Event types sent over the admin feed
const (
	EventSubmissionReceived = "submission_received"
)

// SubmissionEvent is the payload of EventSubmissionReceived
type SubmissionEvent struct {
	ID          string `json:"id"`
	Cohort      string `json:"cohort"`
	Segment     string `json:"segment"`
	Timestamp   string `json:"timestamp"`
	HasAnalysis bool   `json:"hasAnalysis"`
}
