package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignaturePayload builds the canonical string signed by the gateway for a
// checkout callback.
func SignaturePayload(gatewayOrderID, gatewayPaymentID string) string {
	return fmt.Sprintf("%s|%s", gatewayOrderID, gatewayPaymentID)
}

// VerifyPaymentSignature checks the callback signature in constant time.
// The expected value is hex(HMAC-SHA256(secret, "orderId|paymentId")).
func VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(SignaturePayload(gatewayOrderID, gatewayPaymentID)))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPaymentSignature checks the callback signature with the client's secret.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, c.keySecret)
}
