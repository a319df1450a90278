package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"coach_outreach_service/internal/domain/mail"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SMTPTransport delivers mail over plain SMTP with STARTTLS-capable AUTH.
// Each Send dials a fresh connection; batches are small and paced, so
// connection reuse buys nothing worth the state.
type SMTPTransport struct {
	logger *logrus.Logger
}

func NewSMTPTransport(logger *logrus.Logger) *SMTPTransport {
	return &SMTPTransport{logger: logger}
}

// Send delivers one message using the given credentials. Authentication
// failures are wrapped in mail.ErrAuth so the caller halts the batch;
// everything else is mail.ErrTransport.
func (t *SMTPTransport) Send(ctx context.Context, creds mail.Credentials, msg mail.Message) (string, error) {
	addr := fmt.Sprintf("%s:%d", creds.Host, creds.Port)
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), creds.Host)

	from := creds.From
	if from == "" {
		from = creds.Username
	}

	payload := buildMIME(from, msg.To, msg.Subject, msg.Body, messageID)
	auth := smtp.PlainAuth("", creds.Username, creds.Password, creds.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, from, []string{msg.To}, payload)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", mail.ErrTransport, ctx.Err())
	case err := <-done:
		if err != nil {
			if isAuthError(err) {
				return "", fmt.Errorf("%w: %v", mail.ErrAuth, err)
			}
			return "", fmt.Errorf("%w: %v", mail.ErrTransport, err)
		}
	}

	t.logger.WithFields(logrus.Fields{
		"to":         msg.To,
		"message_id": messageID,
	}).Debug("smtp delivery accepted")
	return messageID, nil
}

// isAuthError classifies SMTP reply codes. 535 is the authentication failure
// code; 530 is "authentication required", which also means our credential
// did not take.
func isAuthError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "535") ||
		strings.Contains(s, "530") ||
		strings.Contains(strings.ToLower(s), "auth")
}

func buildMIME(from, to, subject, body, messageID string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
