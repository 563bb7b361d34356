package resumekit

import (
	"crypto/rand"
	"math/big"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// passwordAlphabet matches the shape of the legacy generated passwords:
// lowercase letters and digits.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random alphanumeric password of the given
// length, suitable for the one-time credential mailed after payment.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive", errors.CategoryBadInput)
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, errors.CategoryInternal, "failed to read randomness")
		}
		out[i] = passwordAlphabet[n.Int64()]
	}

	return string(out), nil
}
