package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
)

func signFor(t *testing.T, orderID, paymentID, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "test-secret"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	sig := signFor(t, orderID, paymentID, secret)

	if !VerifyPaymentSignature(orderID, paymentID, sig, secret) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifyPaymentSignature(orderID, paymentID, sig, "other-secret") {
		t.Fatalf("signature should fail with wrong secret")
	}
	if VerifyPaymentSignature(orderID, "pay_other", sig, secret) {
		t.Fatalf("signature should fail for a different payment id")
	}
	if VerifyPaymentSignature(orderID, paymentID, "", secret) {
		t.Fatalf("empty signature should fail")
	}
	if VerifyPaymentSignature("", paymentID, sig, secret) {
		t.Fatalf("empty order id should fail")
	}
}

func TestPaiseFromAmount(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"900.00", 90000},
		{"669.33", 66933},
		{"0.01", 1},
		{"1234.567", 123456},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.amount, err)
		}
		if got := PaiseFromAmount(amount); got != tc.want {
			t.Errorf("PaiseFromAmount(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
