package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash (default cost) from a plaintext
// password. bcrypt salts every call, so equal passwords never share a hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash. A nil return means it does.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
