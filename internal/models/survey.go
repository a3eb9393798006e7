package models

// SurveyDefinition describes the card sent to respondents.
type SurveyDefinition struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is one single-choice question on the card.
type Question struct {
	Title   string   `json:"title" yaml:"title"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// Choice is one selectable option; Value is what lands in SurveyResponse.Answers.
type Choice struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}
