package auth

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the registration floor. Length is the only
// server-side rule; composition policies are a client concern.
const MinPasswordLength = 8

// HashPassword derives a storable hash from a plaintext password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// verifyPassword reports whether password matches the user's stored hash.
// Anonymous users have no hash and can never verify.
func verifyPassword(user *User, password string) bool {
	hash, ok := user.PasswordHash()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
