package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/tfields/gatehouse/auth"
)

// Signer mints and verifies tamper-evident session tokens. The external
// token is `sessionID.tag` where the tag is an HMAC-SHA256 over the id.
//
// The key is generated once at process start and held only in a memguard
// enclave; it is never persisted. A restart therefore invalidates every
// outstanding cookie, which is acceptable since the session store still
// ages the records out.
type Signer struct {
	key *memguard.Enclave
}

// NewSigner generates a fresh 32-byte signing key.
func NewSigner() *Signer {
	return &Signer{key: memguard.NewEnclaveRandom(32)}
}

// Sign returns the externally visible token for a session id.
func (s *Signer) Sign(sessionID string) (string, error) {
	tag, err := s.tag(sessionID)
	if err != nil {
		return "", err
	}
	return sessionID + "." + base64.RawURLEncoding.EncodeToString(tag), nil
}

// Verify checks the token's authentication tag and returns the session id.
// Any malformed or tampered token yields auth.ErrBadSignature.
func (s *Signer) Verify(token string) (string, error) {
	id, encTag, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", auth.ErrBadSignature
	}
	got, err := base64.RawURLEncoding.DecodeString(encTag)
	if err != nil {
		return "", auth.ErrBadSignature
	}
	want, err := s.tag(id)
	if err != nil {
		return "", err
	}
	if !hmac.Equal(got, want) {
		return "", auth.ErrBadSignature
	}
	return id, nil
}

func (s *Signer) tag(sessionID string) ([]byte, error) {
	key, err := s.key.Open()
	if err != nil {
		return nil, fmt.Errorf("opening signing key enclave: %w", err)
	}
	defer key.Destroy()
	mac := hmac.New(sha256.New, key.Bytes())
	mac.Write([]byte(sessionID))
	return mac.Sum(nil), nil
}
