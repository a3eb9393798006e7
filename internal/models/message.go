package models

// OutboundMessage is one markdown message addressed to a person.
type OutboundMessage struct {
	ToPersonEmail string `json:"toPersonEmail"`
	Markdown      string `json:"markdown"`
}
