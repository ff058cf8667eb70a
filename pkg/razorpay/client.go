package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	razorpaygo "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// GatewayOrder is the subset of the gateway order response the platform uses.
type GatewayOrder struct {
	ID          string
	AmountPaise int64
	Currency    string
	Status      string
}

// OrderCreateParams describes a gateway order request. Amount is in rupees
// and converted to paise at the wire boundary.
type OrderCreateParams struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]any
}

type orderCreator interface {
	Create(data map[string]any, extraHeaders map[string]string) (map[string]any, error)
}

// Client exposes Razorpay primitives with centralized auth, logging, and error mapping.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	currency := strings.TrimSpace(strings.ToUpper(cfg.Currency))
	if currency == "" {
		currency = string(enums.CurrencyINR)
	}

	sdk := razorpaygo.NewClient(keyID, keySecret)
	if cfg.Timeout > 0 {
		sdk.SetTimeout(timeoutSeconds(cfg.Timeout))
	}

	c := &Client{
		orders:    sdk.Order,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// timeoutSeconds converts a request timeout to the whole seconds the SDK
// expects. Sub-second values truncate to 0, which the SDK reads as unlimited,
// so anything below one second rounds up to 1.
func timeoutSeconds(d time.Duration) int16 {
	secs := int64(d / time.Second)
	if secs < 1 {
		return 1
	}
	if secs > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(secs)
}

// KeyID returns the configured public key, safe to hand to checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder opens a gateway order for the given amount.
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*GatewayOrder, error) {
	currency := strings.TrimSpace(strings.ToUpper(params.Currency))
	if currency == "" {
		currency = c.currency
	}
	paise := PaiseFromAmount(params.Amount)
	if paise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order amount must be positive")
	}

	data := map[string]any{
		"amount":   paise,
		"currency": currency,
	}
	if params.Receipt != "" {
		data["receipt"] = params.Receipt
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"operation":    "create_order",
		"amount_paise": paise,
		"currency":     currency,
	})
	c.logger.Info(ctx, "razorpay request")

	resp, err := c.orders.Create(data, nil)
	if err != nil {
		c.logger.Error(ctx, "razorpay create_order", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	order := &GatewayOrder{
		ID:          stringField(resp, "id"),
		AmountPaise: int64Field(resp, "amount"),
		Currency:    stringField(resp, "currency"),
		Status:      stringField(resp, "status"),
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay response missing order id")
	}

	c.logger.Info(c.logger.WithField(ctx, "gateway_order_id", order.ID), "razorpay response")
	return order, nil
}

// PaiseFromAmount converts a rupee amount to integer paise.
func PaiseFromAmount(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}
