package template_test

import (
	"database/sql"
	"testing"

	"coach_outreach_service/internal/domain/template"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tmpl := &template.Template{
		Subject: sql.NullString{String: "{athlete_name} - {school}", Valid: true},
		Body:    "Coach {coach_first_name}, I'm {athlete_name}, class of {grad_year}.",
	}

	subject, body := tmpl.Render(map[string]string{
		"athlete_name":     "Jordan Miles",
		"school":           "Granite State",
		"coach_first_name": "Pat",
		"grad_year":        "2027",
	})

	assert.Equal(t, "Jordan Miles - Granite State", subject)
	assert.Equal(t, "Coach Pat, I'm Jordan Miles, class of 2027.", body)
}

func TestRender_UnknownPlaceholderLeftIntact(t *testing.T) {
	tmpl := &template.Template{Body: "Hello {coach_name}, see {missing}."}

	_, body := tmpl.Render(map[string]string{"coach_name": "Pat Doyle"})
	assert.Equal(t, "Hello Pat Doyle, see {missing}.", body)
}

func TestRender_NoSubject(t *testing.T) {
	tmpl := &template.Template{Body: "plain dm text"}
	subject, body := tmpl.Render(nil)
	assert.Empty(t, subject)
	assert.Equal(t, "plain dm text", body)
}
