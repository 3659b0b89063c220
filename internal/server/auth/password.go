package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost balances login latency against brute-force resistance.
const DefaultBcryptCost = bcrypt.DefaultCost

// dummyHash is a valid bcrypt hash of an unguessable value, used to keep
// hash verification time flat when the account does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// HashPassword returns the bcrypt hash of plain using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummyPassword runs a comparison against a throwaway hash. Callers
// use it on the unknown-account path so that path is as slow as a real
// password check.
func VerifyDummyPassword(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
