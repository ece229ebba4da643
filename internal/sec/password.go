package sec

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLen is the longest password bcrypt will accept, in bytes.
const MaxPasswordLen = 72

// PasswordHasher produces and checks password digests. Digests are opaque and
// salted per call, so they are never compared for equality.
type PasswordHasher interface {
	// Hash returns a new digest of password.
	Hash(password string) ([]byte, error)
	// Verify reports whether password resolves to digest.
	Verify(password string, digest []byte) bool
}

// Bcrypt is a [PasswordHasher] using bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt [PasswordHasher]. Costs outside bcrypt's accepted
// range fall back to [bcrypt.DefaultCost].
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{cost: cost}
}

// Hash satisfies [PasswordHasher].
func (b Bcrypt) Hash(password string) ([]byte, error) {
	return HashPassword(password, b.cost)
}

// Verify satisfies [PasswordHasher].
func (b Bcrypt) Verify(password string, digest []byte) bool {
	return ComparePassword(password, digest) == nil
}

// ComparePassword returns an error if the provided password does not resolve to
// the given hash.
func ComparePassword[T ~string | ~[]byte](password T, hash []byte) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

// HashPassword generates the hash for a given password at the given cost. It
// errors if the password is longer than [MaxPasswordLen] bytes.
func HashPassword[T ~string | ~[]byte](password T, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

var _ PasswordHasher = Bcrypt{}
