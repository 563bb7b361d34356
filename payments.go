package resumekit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/razorpay/razorpay-go"
)

// SignPayment computes the provider signature for an order/payment pair:
// hex encoded HMAC-SHA256 over "<orderID>|<paymentID>".
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature recomputes the expected signature and compares it
// against the provided one in constant time.
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) error {
	expected := SignPayment(secret, orderID, paymentID)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// ProviderOrder is the subset of the gateway order we care about.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// PaymentGateway opens orders with the payment provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*ProviderOrder, error)
}

// RazorpayGateway is the production PaymentGateway backed by the Razorpay
// orders API.
type RazorpayGateway struct {
	client *razorpay.Client
	logger Logger
}

var _ PaymentGateway = (*RazorpayGateway)(nil)

// NewRazorpayGateway builds a gateway from API credentials.
func NewRazorpayGateway(keyID, keySecret string, logger Logger) *RazorpayGateway {
	if logger == nil {
		logger = defLogger{}
	}
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		logger: logger,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*ProviderOrder, error) {
	data := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.logger.Error("gateway order create failed: %s", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "payment gateway order create failed").
			WithMetadata(map[string]any{"receipt": receipt})
	}

	order := &ProviderOrder{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}

	if id, ok := body["id"].(string); ok {
		order.ID = id
	}

	if order.ID == "" {
		return nil, goerrors.New("payment gateway returned order without id", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"receipt": receipt})
	}

	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok {
		order.Currency = cur
	}

	return order, nil
}

// Receipt derives the gateway receipt string for an order intent.
func Receipt(email string) string {
	return fmt.Sprintf("rcpt_%s", email)
}
