package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"
)

const maxErrorBody = 4 << 10

// Razorpay is a minimal client for the Orders API authenticated with the key pair.
type Razorpay struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewRazorpay(baseURL, keyID, keySecret string, client *http.Client) *Razorpay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Razorpay{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		client:    client,
	}
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, req dompay.CreateOrderRequest) (*dompay.GatewayOrder, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: encode order: %w", err)
	}

	var out orderResponse
	if err := r.do(ctx, http.MethodPost, "/v1/orders", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

func (r *Razorpay) FetchOrder(ctx context.Context, id string) (*dompay.GatewayOrder, error) {
	var out orderResponse
	if err := r.do(ctx, http.MethodGet, "/v1/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

func (r *Razorpay) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("razorpay: build request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", dompay.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return dompay.ErrGatewayOrderNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", dompay.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("razorpay: %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("razorpay: decode response: %w", err)
	}
	return nil
}

func (o orderResponse) toDomain() *dompay.GatewayOrder {
	return &dompay.GatewayOrder{
		ID:       o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Receipt:  o.Receipt,
		Status:   o.Status,
	}
}
