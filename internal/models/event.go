package models

// EventData is the "data" object of an inbound webhook delivery.
// Which fields are set depends on the resource.
type EventData struct {
	ID          string `json:"id"`
	PersonID    string `json:"personId"`
	PersonEmail string `json:"personEmail"`
	MessageID   string `json:"messageId"`
	RoomID      string `json:"roomId"`
	Created     string `json:"created"`
}

// WebhookEnvelope is the body of an inbound webhook delivery.
type WebhookEnvelope struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Resource string    `json:"resource"`
	Event    string    `json:"event"`
	Data     EventData `json:"data"`
}

// ScheduledEvent is the body posted by the scheduler.
type ScheduledEvent struct {
	Source string `json:"source"`
	Time   string `json:"time"`
	Job    string `json:"job"`
}

// ManualEvent asks for the survey card to be sent to one respondent.
type ManualEvent struct {
	Email string `json:"email" binding:"required,email"`
}
