package util

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), 14)
	if err != nil {
		return "", fmt.Errorf("cannot hash password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// VerifyHash reports whether plaintext matches the stored digest. Any
// mismatch, including a malformed digest, is a plain false rather than
// an error.
func VerifyHash(base64Hash string, plaintext string) bool {
	hash, err := base64.StdEncoding.DecodeString(base64Hash)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
