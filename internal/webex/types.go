package webex

// Person is a Webex user profile.
type Person struct {
	ID          string   `json:"id"`
	Emails      []string `json:"emails"`
	DisplayName string   `json:"displayName"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
}

// PrimaryEmail returns the first email of the profile, or "" if there is none.
func (p Person) PrimaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0]
}

// Message is a Webex message as returned by the messages API.
type Message struct {
	ID            string `json:"id"`
	RoomID        string `json:"roomId,omitempty"`
	RoomType      string `json:"roomType,omitempty"`
	ToPersonEmail string `json:"toPersonEmail,omitempty"`
	Text          string `json:"text,omitempty"`
	Markdown      string `json:"markdown,omitempty"`
	PersonID      string `json:"personId,omitempty"`
	PersonEmail   string `json:"personEmail,omitempty"`
	Created       string `json:"created,omitempty"`
}

// Attachment is a rich card attached to a message.
type Attachment struct {
	ContentType string      `json:"contentType"`
	Content     interface{} `json:"content"`
}

// MessageRequest is the body of POST /messages.
type MessageRequest struct {
	ToPersonEmail string       `json:"toPersonEmail"`
	Markdown      string       `json:"markdown"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// AttachmentAction is a submitted card.
type AttachmentAction struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	MessageID string                 `json:"messageId"`
	PersonID  string                 `json:"personId"`
	RoomID    string                 `json:"roomId"`
	Inputs    map[string]interface{} `json:"inputs"`
	Created   string                 `json:"created"`
}

// CreateWebhookRequest is the body of POST /webhooks.
type CreateWebhookRequest struct {
	Name      string `json:"name"`
	TargetURL string `json:"targetUrl"`
	Resource  string `json:"resource"`
	Event     string `json:"event"`
	Secret    string `json:"secret,omitempty"`
}
