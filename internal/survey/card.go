package survey

import (
	"fmt"
	"time"

	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/webex"
)

// CardContentType is the attachment content type of an Adaptive Card.
const CardContentType = "application/vnd.microsoft.card.adaptive"

// CardDateLayout formats the date line under the card title.
const CardDateLayout = "Mon, 02 Jan 2006"

// Card is an Adaptive Card 1.0 document.
type Card struct {
	Schema  string        `json:"$schema"`
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Body    []interface{} `json:"body"`
	Actions []CardAction  `json:"actions"`
}

// TextBlock is a card text element.
type TextBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Size   string `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

// ChoiceSet is a single-choice input; ID becomes the answer key on submit.
type ChoiceSet struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Style   string          `json:"style"`
	Choices []models.Choice `json:"choices"`
}

// CardAction is a card button.
type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// QuestionID returns the input id of the i-th question (zero based).
func QuestionID(i int) string {
	return fmt.Sprintf("q%d", i+1)
}

// BuildCard renders def as an Adaptive Card attachment dated now.
func BuildCard(def models.SurveyDefinition, now time.Time) []webex.Attachment {
	body := []interface{}{
		TextBlock{Type: "TextBlock", Size: "Medium", Weight: "bolder", Text: def.Title, Wrap: true},
		TextBlock{Type: "TextBlock", Weight: "bolder", Text: now.Format(CardDateLayout)},
		TextBlock{Type: "TextBlock", Size: "Small", Text: def.Description, Wrap: true},
	}
	for i, q := range def.Questions {
		body = append(body,
			TextBlock{Type: "TextBlock", Text: q.Title, Wrap: true},
			ChoiceSet{Type: "Input.ChoiceSet", ID: QuestionID(i), Style: "expanded", Choices: q.Choices},
		)
	}
	return []webex.Attachment{{
		ContentType: CardContentType,
		Content: Card{
			Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
			Type:    "AdaptiveCard",
			Version: "1.0",
			Body:    body,
			Actions: []CardAction{{Type: "Action.Submit", Title: "Submit"}},
		},
	}}
}
