package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt ignores everything past 72 bytes; we truncate up front so the
// behaviour is explicit. Passwords differing only beyond this length
// compare equal. That is a property of the algorithm, not a bug here.
const maxPasswordBytes = 72

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword derives a salted bcrypt digest from the password.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the password matches the stored
// digest. Malformed digests verify as false, never as an error.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), truncatePassword(password)) == nil
}
