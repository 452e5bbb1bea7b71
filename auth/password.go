package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/tfields/gatehouse/internal/util"
)

const saltLen = 16

// Argon2idParams are the cost parameters for password hashing.
type Argon2idParams struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultArgon2idParams returns the server-chosen hashing cost.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
	}
}

// Hasher hashes and verifies passwords with Argon2id. Verification is
// deliberately expensive; callers run on their own request goroutine so
// other requests keep flowing while a verification is in progress.
//
// The dummy hash is verified against whenever the target user does not
// exist, so that unknown-username and wrong-password attempts take the
// same time.
type Hasher struct {
	params    Argon2idParams
	dummyHash string
}

// NewHasher creates a Hasher with the given parameters and precomputes
// the dummy hash used for timing equalization.
func NewHasher(params Argon2idParams) (*Hasher, error) {
	h := &Hasher{params: params}
	decoy, err := util.RandomBytes(32)
	if err != nil {
		return nil, fmt.Errorf("generating decoy password: %w", err)
	}
	dummy, err := h.Hash(base64.RawStdEncoding.EncodeToString(decoy))
	util.WipeBytes(decoy)
	if err != nil {
		return nil, fmt.Errorf("precomputing dummy hash: %w", err)
	}
	h.dummyHash = dummy
	return h, nil
}

// Hash derives an Argon2id hash of the plaintext and encodes it in PHC
// string format. The plaintext is not retained.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt, err := util.RandomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.MemoryKiB, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	util.WipeBytes(key)
	return encoded, nil
}

// Verify reports whether plaintext matches the PHC-encoded hash. The
// comparison is constant time in the derived key.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plaintext), salt, params.Time, params.MemoryKiB, params.Parallelism, uint32(len(want)))
	ok := subtle.ConstantTimeCompare(got, want) == 1
	util.WipeBytes(got)
	return ok
}

// VerifyDummy burns the same work as Verify against a throwaway hash.
// Called when the user does not exist so that authentication timing does
// not leak username existence.
func (h *Hasher) VerifyDummy(plaintext string) {
	h.Verify(plaintext, h.dummyHash)
}

func decodeHash(encoded string) (Argon2idParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, nil, fmt.Errorf("malformed argon2id hash")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("parsing hash version: %w", err)
	}
	if version != argon2.Version {
		return Argon2idParams{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}
	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Time, &params.Parallelism); err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("parsing hash params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Argon2idParams{}, nil, nil, fmt.Errorf("decoding key: %w", err)
	}
	return params, salt, key, nil
}
