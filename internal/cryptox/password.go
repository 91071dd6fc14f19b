// Package cryptox provides one-way password hashing for stored credentials.
package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt hash of rawPassword. A fresh random
// salt is generated on every call, so hashing the same password twice yields
// different strings.
func HashPassword(rawPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether rawPassword matches the stored bcrypt hash.
// A mismatch or an unrecognized hash encoding both report false.
func CheckPassword(rawPassword string, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(rawPassword)) == nil
}
