package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"qr-wallet-service/config"
	"qr-wallet-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// RazorpayGateway implements ports.PaymentGateway against the Razorpay
// Orders API.
type RazorpayGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewRazorpayGateway creates a gateway client from config.
func NewRazorpayGateway(cfg config.GatewayConfig, log zerolog.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.With().Str("component", "razorpay").Logger(),
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers a top-up order with the gateway and returns the
// gateway-issued order id.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("receipt", receipt).Msg("gateway: order creation failed")
		return "", apperror.ErrGatewayFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.log.Warn().
			Int("status", resp.StatusCode).
			Str("receipt", receipt).
			Str("body", string(respBody)).
			Msg("gateway: non-2xx response")
		return "", apperror.ErrGatewayFailure(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	var order createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", apperror.ErrGatewayFailure(fmt.Errorf("decode order response: %w", err))
	}
	if order.ID == "" {
		return "", apperror.ErrGatewayFailure(fmt.Errorf("gateway response missing order id"))
	}

	g.log.Info().
		Str("order_id", order.ID).
		Int64("amount", amount).
		Str("currency", currency).
		Msg("gateway: order created")

	return order.ID, nil
}
