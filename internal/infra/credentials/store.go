package credentials

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"

	"coach_outreach_service/internal/domain/mail"
)

// Store keeps per-athlete SMTP passwords encrypted at rest with AES-GCM and
// falls back to a process-wide credential for athletes without their own.
// It implements mail.CredentialStore.
type Store struct {
	db       *sql.DB
	aead     cipher.AEAD
	fallback mail.Credentials
}

// NewStore builds the store. keyHex must be 64 hex characters (a 32-byte
// AES-256 key).
func NewStore(db *sql.DB, keyHex string, fallback mail.Credentials) (*Store, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("credentials key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init gcm: %w", err)
	}
	return &Store{db: db, aead: aead, fallback: fallback}, nil
}

// ForAthlete returns the athlete's decrypted credential, or the fallback when
// none is stored. A stored row that fails to decrypt is an error; silently
// sending through the shared mailbox would misattribute the mail.
func (s *Store) ForAthlete(ctx context.Context, athleteID int64) (mail.Credentials, error) {
	query := `SELECT smtp_host, smtp_port, smtp_username, password_ciphertext, smtp_from
              FROM athlete_credentials WHERE athlete_id = $1`

	var creds mail.Credentials
	var ciphertext []byte
	err := s.db.QueryRowContext(ctx, query, athleteID).Scan(
		&creds.Host, &creds.Port, &creds.Username, &ciphertext, &creds.From,
	)
	if err == sql.ErrNoRows {
		return s.fallback, nil
	}
	if err != nil {
		return mail.Credentials{}, fmt.Errorf("error fetching credentials for athlete %d: %w", athleteID, err)
	}

	password, err := s.decrypt(ciphertext)
	if err != nil {
		return mail.Credentials{}, fmt.Errorf("error decrypting credentials for athlete %d: %w", athleteID, err)
	}
	creds.Password = password
	return creds, nil
}

// Save encrypts and upserts the athlete's credential.
func (s *Store) Save(ctx context.Context, athleteID int64, creds mail.Credentials) error {
	ciphertext, err := s.encrypt(creds.Password)
	if err != nil {
		return fmt.Errorf("error encrypting credentials for athlete %d: %w", athleteID, err)
	}

	query := `
        INSERT INTO athlete_credentials (athlete_id, smtp_host, smtp_port, smtp_username, password_ciphertext, smtp_from, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (athlete_id) DO UPDATE SET
            smtp_host = EXCLUDED.smtp_host,
            smtp_port = EXCLUDED.smtp_port,
            smtp_username = EXCLUDED.smtp_username,
            password_ciphertext = EXCLUDED.password_ciphertext,
            smtp_from = EXCLUDED.smtp_from,
            updated_at = NOW()`
	_, err = s.db.ExecContext(ctx, query, athleteID, creds.Host, creds.Port, creds.Username, ciphertext, creds.From)
	if err != nil {
		return fmt.Errorf("error saving credentials for athlete %d: %w", athleteID, err)
	}
	return nil
}

// Delete removes the athlete's stored credential, reverting to the fallback.
func (s *Store) Delete(ctx context.Context, athleteID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM athlete_credentials WHERE athlete_id = $1`, athleteID)
	if err != nil {
		return fmt.Errorf("error deleting credentials for athlete %d: %w", athleteID, err)
	}
	return nil
}

// encrypt seals the plaintext with a random nonce prefixed to the ciphertext.
func (s *Store) encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

func (s *Store) decrypt(ciphertext []byte) (string, error) {
	if len(ciphertext) < s.aead.NonceSize() {
		return "", fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:s.aead.NonceSize()], ciphertext[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
