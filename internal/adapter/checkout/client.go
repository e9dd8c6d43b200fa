package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// ErrSessionNotFound indicates the provider doesn't know the session.
var ErrSessionNotFound = errors.New("checkout session not found")

// TooManyRequestsError represents rate limiting signal from the provider.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// SessionRequest describes a hosted checkout session to create.
type SessionRequest struct {
	AmountMinor    int64
	Currency       string
	ProductName    string
	CustomerEmail  string
	OrderReference string
}

// Client exposes operations against the checkout provider.
type Client interface {
	CreateSession(ctx context.Context, req SessionRequest) (*model.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// createRequest mirrors the JSON payload sent to the provider.
type createRequest struct {
	AmountMinor       int64  `json:"amount_minor"`
	Currency          string `json:"currency"`
	ProductName       string `json:"product_name"`
	CustomerEmail     string `json:"customer_email"`
	ClientReferenceID string `json:"client_reference_id"`
}

// sessionResponse mirrors JSON payload from the provider.
type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id,omitempty"`
	AmountMinor   int64  `json:"amount_minor"`
}

// NewHTTPClient creates HTTP checkout client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse checkout url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("checkout url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreateSession registers a hosted checkout session for the given
// amount and returns the session id and redirect URL.
func (c *HTTPClient) CreateSession(ctx context.Context, sessionReq SessionRequest) (*model.CheckoutSession, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/checkout/sessions")

	payload, err := json.Marshal(createRequest{
		AmountMinor:       sessionReq.AmountMinor,
		Currency:          sessionReq.Currency,
		ProductName:       sessionReq.ProductName,
		CustomerEmail:     sessionReq.CustomerEmail,
		ClientReferenceID: sessionReq.OrderReference,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return c.decodeSession(resp.Body)
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("checkout session create failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("checkout error: %s", resp.Status)
	}
}

// GetSession retrieves the final status of a checkout session.
func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/checkout/sessions/", sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return c.decodeSession(resp.Body)
	case http.StatusNotFound:
		return nil, ErrSessionNotFound
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("checkout session fetch failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("checkout error: %s", resp.Status)
	}
}

func (c *HTTPClient) decodeSession(body io.Reader) (*model.CheckoutSession, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	var data sessionResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &model.CheckoutSession{
		ID:            data.ID,
		URL:           data.URL,
		Status:        model.CheckoutSessionStatus(data.PaymentStatus),
		TransactionID: data.TransactionID,
		AmountMinor:   data.AmountMinor,
	}, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
