package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash for an account password. A cost
// below the bcrypt minimum falls back to the library default so a
// missing config value cannot weaken stored credentials.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a login attempt against a stored hash. The
// error is bcrypt's mismatch error; callers translate it to an
// unauthorized response without exposing which check failed.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
