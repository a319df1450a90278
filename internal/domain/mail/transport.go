package mail

import (
	"context"
	"errors"
)

// Sentinel errors a Transport implementation wraps so the orchestrator can
// tell a transient delivery failure from a dead credential.
var (
	// ErrTransport marks a transient delivery failure. The record becomes
	// failed and the batch continues.
	ErrTransport = errors.New("mail transport failure")
	// ErrAuth marks an invalid credential. The athlete's whole batch halts;
	// no retry until the credential is fixed.
	ErrAuth = errors.New("mail authentication failure")
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string // HTML body with the tracking pixel already embedded
}

// Credentials authenticates a transport for one athlete's mailbox.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Transport sends mail on behalf of an athlete. Implementations wrap an
// external webmail/SMTP service; the scheduling core never sees transport
// internals.
type Transport interface {
	Send(ctx context.Context, creds Credentials, msg Message) (messageID string, err error)
}

// CredentialStore yields decrypted transport credentials for an athlete,
// falling back to a process-wide credential when the athlete has none.
// A decryption failure halts sending for that athlete only.
type CredentialStore interface {
	ForAthlete(ctx context.Context, athleteID int64) (Credentials, error)
}
