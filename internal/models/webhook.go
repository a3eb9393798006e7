package models

// Webhook resources and events used by the bot.
const (
	ResourceAttachmentActions = "attachmentActions"
	ResourceMessages          = "messages"
	EventCreated              = "created"
)

// WebhookSubscription is one inbound event rule registered at the chat platform.
type WebhookSubscription struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TargetURL string `json:"targetUrl"`
	Resource  string `json:"resource"`
	Event     string `json:"event"`
	Secret    string `json:"secret,omitempty"`
	Status    string `json:"status,omitempty"`
	Created   string `json:"created,omitempty"`
}
