package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of password. bcrypt embeds a random
// per-user salt in the hash it produces.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyHash is a valid bcrypt hash of an unguessable value. Login runs a
// compare against it when the email is unknown so that both failure paths
// cost the same and return the same error.
var DummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("staffolio-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()
