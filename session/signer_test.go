package session

import (
	"strings"
	"testing"

	"github.com/tfields/gatehouse/auth"
)

func TestSignAndVerify(t *testing.T) {
	s := NewSigner()

	token, err := s.Sign("session-1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	id, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != "session-1" {
		t.Fatalf("got id %q, want %q", id, "session-1")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := NewSigner()
	token, err := s.Sign("session-1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	for _, bad := range []string{
		"",
		"no-separator",
		".tag-without-id",
		"session-2." + strings.SplitN(token, ".", 2)[1], // tag for a different id
		token + "x",
		strings.SplitN(token, ".", 2)[0] + ".!!!not-base64!!!",
	} {
		if _, err := s.Verify(bad); err != auth.ErrBadSignature {
			t.Fatalf("token %q: got %v, want ErrBadSignature", bad, err)
		}
	}
}

func TestKeysAreProcessLocal(t *testing.T) {
	// A token signed by one process must not verify under another's key.
	a := NewSigner()
	b := NewSigner()

	token, err := a.Sign("session-1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := b.Verify(token); err != auth.ErrBadSignature {
		t.Fatalf("got %v, want ErrBadSignature across signers", err)
	}
}
