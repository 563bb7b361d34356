package resumekit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	// ResetTokenTTL is the validity window of a link-based reset token.
	ResetTokenTTL = time.Hour
	// OTPTTL is the validity window of a one-time numeric code.
	OTPTTL = 10 * time.Minute
)

// NewResetToken returns a 32-byte random token, hex encoded.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read randomness")
	}
	return hex.EncodeToString(buf), nil
}

// NewOTP returns a 6-digit one-time code in [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read randomness")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
