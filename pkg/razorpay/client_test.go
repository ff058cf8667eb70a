package razorpay

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

type stubOrders struct {
	lastData map[string]any
	resp     map[string]any
	err      error
}

func (s *stubOrders) Create(data map[string]any, extraHeaders map[string]string) (map[string]any, error) {
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testClient(orders orderCreator) *Client {
	return &Client{
		orders:    orders,
		keyID:     "rzp_test_key",
		keySecret: "secret",
		currency:  "INR",
		logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestCreateOrder_ConvertsToPaise(t *testing.T) {
	stub := &stubOrders{resp: map[string]any{
		"id":       "order_ABC123",
		"amount":   float64(90000),
		"currency": "INR",
		"status":   "created",
	}}
	client := testClient(stub)

	amount, _ := decimal.NewFromString("900.00")
	order, err := client.CreateOrder(context.Background(), OrderCreateParams{
		Amount:  amount,
		Receipt: "ord-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.lastData["amount"]; got != int64(90000) {
		t.Fatalf("expected amount 90000 paise, got %v", got)
	}
	if got := stub.lastData["currency"]; got != "INR" {
		t.Fatalf("expected INR currency, got %v", got)
	}
	if order.ID != "order_ABC123" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.AmountPaise != 90000 {
		t.Fatalf("unexpected amount %d", order.AmountPaise)
	}
}

func TestCreateOrder_ZeroAmountRejected(t *testing.T) {
	client := testClient(&stubOrders{})

	_, err := client.CreateOrder(context.Background(), OrderCreateParams{Amount: decimal.Zero})
	if err == nil {
		t.Fatalf("expected error for zero amount")
	}
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrder_GatewayFailureMapped(t *testing.T) {
	client := testClient(&stubOrders{err: errors.New("gateway down")})

	amount, _ := decimal.NewFromString("10.00")
	_, err := client.CreateOrder(context.Background(), OrderCreateParams{Amount: amount})
	if err == nil {
		t.Fatalf("expected error")
	}
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestTimeoutSeconds(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want int16
	}{
		{"whole seconds", 10 * time.Second, 10},
		{"sub-second rounds up", 250 * time.Millisecond, 1},
		{"truncates fraction", 2500 * time.Millisecond, 2},
		{"clamps to int16", 40000 * time.Second, math.MaxInt16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeoutSeconds(tc.in); got != tc.want {
				t.Fatalf("timeoutSeconds(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
