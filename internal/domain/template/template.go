package template

import (
	"database/sql"
	"strings"
	"time"
)

// Kind distinguishes email templates from DM templates.
type Kind string

const (
	KindEmail Kind = "email"
	KindDM    Kind = "dm"
)

// Template is a reusable message body with {placeholder} substitution.
// One active template exists per (kind, email_type, coach_type) combination;
// the send orchestrator picks it when rendering a candidate.
type Template struct {
	ID        int64
	Name      string
	Subject   sql.NullString
	Body      string
	Kind      Kind
	EmailType string // intro, followup_1.., custom; empty matches any
	CoachType string // recruiting_coordinator, position, any
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Render substitutes {key} placeholders in the subject and body.
func (t *Template) Render(vars map[string]string) (subject, body string) {
	subject = t.Subject.String
	body = t.Body
	for k, v := range vars {
		placeholder := "{" + k + "}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body
}
