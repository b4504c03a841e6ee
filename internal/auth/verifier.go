package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a username and password pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

// StaticVerifier accepts exactly one credential pair. Only a bcrypt hash of
// the password is held in memory.
type StaticVerifier struct {
	username []byte
	hash     []byte
}

// NewStaticVerifier hashes password with bcrypt.DefaultCost.
func NewStaticVerifier(username, password string) (*StaticVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth.NewStaticVerifier: %w", err)
	}
	return NewStaticVerifierFromHash(username, hash), nil
}

// NewStaticVerifierFromHash uses an existing bcrypt hash.
func NewStaticVerifierFromHash(username string, hash []byte) *StaticVerifier {
	return &StaticVerifier{username: []byte(username), hash: hash}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) bool {
	// The hash comparison runs even for a wrong username so both failures take
	// the same time.
	userOK := subtle.ConstantTimeCompare([]byte(username), v.username) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userOK && passOK
}
