package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares password against a stored bcrypt hash.
// The comparison is constant-time with respect to the hash contents.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the login does not exist, so unknown
// logins and wrong passwords take the same time.
var dummyHash = mustHash("sessionkeeper-dummy-password")

// BurnPasswordCheck performs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = CheckPassword(dummyHash, password)
}

func mustHash(p string) string {
	h, err := HashPassword([]byte(p))
	if err != nil {
		panic(err)
	}
	return h
}
