package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks that claimed signature is the HMAC-SHA256 hex digest
// of "orderID|paymentID" under secret. The comparison is constant-time.
func VerifySignature(orderID, paymentID, claimed, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(claimed))
}
