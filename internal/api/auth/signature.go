package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateSignature derives the login proof an admin presents instead of a
// password: HMAC of the admin id under the shared secret.
func GenerateSignature(adminID int64, secretKey string) string {
	data := fmt.Sprintf("adminLogin:%d", adminID)
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func ValidateSignature(adminID int64, receivedSig, secretKey string) bool {
	expectedSig := GenerateSignature(adminID, secretKey)
	return hmac.Equal([]byte(expectedSig), []byte(receivedSig))
}
