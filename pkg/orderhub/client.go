package orderhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

const responseBodyReadLimit int64 = 64 * 1024

var errBaseURLRequired = errors.New("orderhub base url is required")

// Client talks to the order hub: the upstream service that persists orders,
// verifies gate passwords server-side and resolves representative contacts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the order hub client from configuration.
func NewClient(cfg config.OrderHubConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// OrderItem is one cart line as submitted to the order hub.
type OrderItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Reference string          `json:"reference"`
}

// CreateOrderRequest is the order-creation payload.
type CreateOrderRequest struct {
	StoreOwnerID string             `json:"store_owner_id"`
	Customer     types.CustomerInfo `json:"customer"`
	Items        []OrderItem        `json:"items"`
}

// CreateOrderResponse is the order hub's acknowledgment.
type CreateOrderResponse struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	DisplayID string `json:"display_id"`
	Error     string `json:"error,omitempty"`
}

// CreateOrder submits a new order. Any transport failure, non-2xx status or
// unsuccessful body is reported as a dependency error; callers must treat it
// as "no order was created".
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if req.StoreOwnerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store owner id is required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	var resp CreateOrderResponse
	if err := c.postJSON(ctx, "/v1/orders", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order service rejected the order").
			WithDetails(map[string]any{"error": resp.Error})
	}
	return &resp, nil
}

type verifyPasswordRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type verifyPasswordResponse struct {
	OK bool `json:"ok"`
}

// VerifyPassword checks a gate secret against the tenant's stored password.
func (c *Client) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	if userID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var resp verifyPasswordResponse
	if err := c.postJSON(ctx, "/v1/passwords/verify", verifyPasswordRequest{UserID: userID, Password: password}, &resp); err != nil {
		return false, err
	}
	return resp.OK, nil
}

type representativeContactRequest struct {
	UserID string `json:"user_id"`
}

type representativeContactResponse struct {
	OK    bool   `json:"ok"`
	Phone string `json:"phone,omitempty"`
}

// RepresentativeContact resolves the tenant-specific messaging destination.
// An empty phone means no override exists and the store contact applies.
func (c *Client) RepresentativeContact(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var resp representativeContactResponse
	if err := c.postJSON(ctx, "/v1/representatives/contact", representativeContactRequest{UserID: userID}, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", nil
	}
	return resp.Phone, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling order hub")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading order hub response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("order hub returned %s", resp.Status)).
			WithDetails(map[string]any{"body": strings.TrimSpace(string(raw))})
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding order hub response")
	}
	return nil
}
