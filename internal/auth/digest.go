package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/sakif/ess-backend/internal/model"
)

// ErrInvalidTokenHash is returned by Verify when a token's digest does not
// match the one recomputed from its own fields.
var ErrInvalidTokenHash = errors.New("auth: invalid token hash")

// DigestService issues and verifies the legacy body token:
//
//	hash = hex(SHA-256(expiry + email + secret))
//
// where expiry is the issuance time in model.TimestampLayout.
//
// COMPATIBILITY, NOT SECURITY:
// This construction is kept byte-for-byte so tokens already held by clients
// keep working. It has known holes: nothing expires, nothing is revoked, and
// the email inside the token is trusted as-is. Anyone holding the secret can
// mint a token for any email. New clients should prefer the JWT issued by
// TokenService, which expires.
type DigestService struct {
	secret string
	now    func() time.Time
}

// NewDigestService returns a DigestService keyed by secret.
func NewDigestService(secret string) (*DigestService, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret must not be empty")
	}
	return &DigestService{secret: secret, now: time.Now}, nil
}

// Issue returns a token for email stamped with the current time.
func (d *DigestService) Issue(email string) model.Token {
	return d.IssueAt(email, d.now())
}

// IssueAt returns a token for email stamped with t, truncated to whole seconds.
func (d *DigestService) IssueAt(email string, t time.Time) model.Token {
	issued := model.FormatTimestamp(t)
	return model.Token{
		Hash:   d.digest(issued, email),
		Email:  email,
		Expiry: issued,
	}
}

// Verify recomputes the digest from tok.Expiry and tok.Email and returns the
// email on a match. It does not check that the email belongs to a user.
func (d *DigestService) Verify(tok model.Token) (string, error) {
	want := d.digest(tok.Expiry, tok.Email)
	if subtle.ConstantTimeCompare([]byte(want), []byte(tok.Hash)) != 1 {
		return "", ErrInvalidTokenHash
	}
	return tok.Email, nil
}

func (d *DigestService) digest(issued, email string) string {
	sum := sha256.Sum256([]byte(issued + email + d.secret))
	return hex.EncodeToString(sum[:])
}
