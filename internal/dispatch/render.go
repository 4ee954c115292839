package dispatch

import (
	"regexp"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// placeholderPattern matches {{identifier}} tokens. The token shape is
// frozen for backward compatibility with stored templates.
var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// eventDateLayout is the human-readable format substituted for
// {{event_date}}.
const eventDateLayout = "January 2, 2006"

// Render substitutes the known placeholders in template with values from
// the participant and its event. Substitution is case-sensitive and
// unconditional; unknown placeholders are left as literal text, and missing
// field values substitute the empty string. The function is pure and
// idempotent: output never contains any of the known tokens, and known
// values are inserted verbatim so a second pass cannot change them further
// unless a value itself spells out an unknown token, which stays literal
// anyway.
func Render(template string, participant *models.Participant, event *models.Event) string {
	values := map[string]string{
		"name":           "",
		"email":          "",
		"phone":          "",
		"company":        "",
		"position":       "",
		"participant_id": "",
		"event_name":     "",
		"event_date":     "",
	}

	if participant != nil {
		values["name"] = participant.Name
		values["email"] = participant.Email
		values["phone"] = participant.Phone
		values["company"] = participant.Company
		values["position"] = participant.Position
		values["participant_id"] = participant.ID.String()
	}

	if event != nil {
		values["event_name"] = event.Name
		if !event.StartDate.IsZero() {
			values["event_date"] = event.StartDate.Format(eventDateLayout)
		}
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, known := values[key]; known {
			return value
		}
		// Unknown placeholder stays as literal text.
		return match
	})
}

// Placeholders returns the distinct placeholder names found in template, in
// order of first appearance. Used by the preview endpoint to surface which
// tokens a template relies on.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))

	for _, match := range matches {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}

	return names
}
