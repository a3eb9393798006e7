package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/anpi-survey/backend/internal/models"
)

// Webex markdown line break.
const br = "  \n"

// Fixed digest lines.
const (
	NoPendingLine    = "No unanswered"
	AllClearLine     = "The health of the respondent users is okay"
	OthersClearLine  = "The health of other responded users is okay"
	NoAnswersLine    = "No answer sent"
	scheduledNone    = "No unanswered at the time"
	scheduledPending = "Unanswered at the time: "
)

// Callout is one flagged respondent in a digest.
type Callout struct {
	Name    string
	Answers string
}

// Digest is everything FormatDigest renders for one organization.
type Digest struct {
	OrgName      string
	PendingNames []string
	Responded    int
	Callouts     []Callout
}

// FormatDigest renders the check report: header, pending line, then either the flagged
// respondents or an all-clear line. With no responses at all there is no health line.
func FormatDigest(d Digest) string {
	lines := []string{header(d.OrgName)}
	if len(d.PendingNames) == 0 {
		lines = append(lines, NoPendingLine)
	} else {
		lines = append(lines, "Unanswered: "+strings.Join(d.PendingNames, ", "))
	}
	if d.Responded > 0 {
		if len(d.Callouts) > 0 {
			for _, c := range d.Callouts {
				lines = append(lines, fmt.Sprintf("> Please check %s answer%s%s%s", c.Name, br, br, c.Answers))
			}
			lines = append(lines, br+OthersClearLine)
		} else {
			lines = append(lines, AllClearLine)
		}
	}
	return strings.Join(lines, br)
}

// FormatScheduledDigest renders the timed report sent to admins by the scheduler.
func FormatScheduledDigest(orgName string, pendingNames []string, at time.Time) string {
	stamp := fmt.Sprintf("%d:%02d ", at.Hour(), at.Minute())
	lines := []string{header(orgName)}
	if len(pendingNames) == 0 {
		lines = append(lines, stamp+scheduledNone)
	} else {
		lines = append(lines, stamp+scheduledPending+strings.Join(pendingNames, ", "))
	}
	return strings.Join(lines, br)
}

// FormatAnswerList renders the list report: every respondent with their answers.
func FormatAnswerList(orgName string, entries []Callout) string {
	body := NoAnswersLine
	if len(entries) > 0 {
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, fmt.Sprintf("> %s%s%s%s", e.Name, br, br, e.Answers))
		}
		body = strings.Join(parts, br)
	}
	return header(orgName) + br + body
}

// FormatAnswers renders one line per answered question, "Q1: <choice title>".
// Slots are matched to questions in card order; a choice other than normal is bold.
// Values with no matching choice are shown raw.
func FormatAnswers(def models.SurveyDefinition, answers map[string]string, normal string) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	models.SortAnswerKeys(keys)

	lines := make([]string, 0, len(keys))
	for i, k := range keys {
		v := answers[k]
		title := v
		if i < len(def.Questions) {
			for _, c := range def.Questions[i].Choices {
				if c.Value == v {
					title = c.Title
					break
				}
			}
		}
		if v != normal {
			title = "**" + title + "**"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(k), title))
	}
	return strings.Join(lines, br)
}

func header(orgName string) string {
	return "## " + orgName + br
}
