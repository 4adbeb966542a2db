// Package backend provides a client for the boekhouding REST API that stores
// invoices, customers and exchange rates.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"facturatie/internal/core"
	"facturatie/internal/fieldmap"
	"facturatie/internal/logger"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrNoToken is returned before any request is made when the caller has no bearer token.
	ErrNoToken = errors.New("backend: missing bearer token")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API error (%d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Client calls the backend on behalf of a user. The user's bearer token is
// passed per call; the client itself holds no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fields     *fieldmap.Schema
	log        zerolog.Logger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		fields:     fieldmap.Default,
		log:        logger.WithComponent("backend"),
	}
}

// CreateSalesInvoice creates a verkoopfactuur.
func (c *Client) CreateSalesInvoice(ctx context.Context, token string, req CreateSalesInvoiceRequest) (*SalesInvoice, error) {
	var inv SalesInvoice
	if err := c.doJSON(ctx, token, http.MethodPost, "/api/boekhouding/verkoopfacturen", req, &inv); err != nil {
		return nil, fmt.Errorf("create sales invoice: %w", err)
	}
	return &inv, nil
}

// GetSalesInvoice fetches one verkoopfactuur including regels and openstaand bedrag.
func (c *Client) GetSalesInvoice(ctx context.Context, token, id string) (*SalesInvoice, error) {
	var inv SalesInvoice
	if err := c.doJSON(ctx, token, http.MethodGet, invoicePath(id), nil, &inv); err != nil {
		return nil, fmt.Errorf("get sales invoice %s: %w", id, err)
	}
	return &inv, nil
}

// AddPayment registers a payment and returns the updated invoice.
func (c *Client) AddPayment(ctx context.Context, token, id string, req PaymentRequest) (*SalesInvoice, error) {
	var inv SalesInvoice
	if err := c.doJSON(ctx, token, http.MethodPost, invoicePath(id)+"/betaling", req, &inv); err != nil {
		return nil, fmt.Errorf("add payment to %s: %w", id, err)
	}
	return &inv, nil
}

// GetExchangeRates fetches the current EUR and USD rates against SRD.
func (c *Client) GetExchangeRates(ctx context.Context, token string) (core.ExchangeRateSet, error) {
	var rates core.ExchangeRateSet
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/suribet/wisselkoersen", nil, &rates); err != nil {
		return core.ExchangeRateSet{}, fmt.Errorf("get exchange rates: %w", err)
	}
	if !rates.Valid() {
		return core.ExchangeRateSet{}, fmt.Errorf("get exchange rates: backend returned non-positive rates %+v", rates)
	}
	return rates, nil
}

// DownloadInvoicePDF returns the rendered PDF of an invoice as opaque bytes.
func (c *Client) DownloadInvoicePDF(ctx context.Context, token, id string) ([]byte, error) {
	resp, err := c.do(ctx, token, http.MethodGet, invoicePath(id)+"/pdf", nil)
	if err != nil {
		return nil, fmt.Errorf("download invoice pdf %s: %w", id, err)
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download invoice pdf %s: %w", id, err)
	}
	return pdf, nil
}

// CreateCustomer creates a debiteur. The record uses client field names and is
// translated to backend names on the way out and back.
func (c *Client) CreateCustomer(ctx context.Context, token string, customer map[string]any) (map[string]any, error) {
	var created map[string]any
	if err := c.doJSON(ctx, token, http.MethodPost, "/api/boekhouding/debiteuren", c.fields.ToBackend(customer), &created); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c.fields.ToFrontend(created), nil
}

func invoicePath(id string) string {
	return "/api/boekhouding/verkoopfacturen/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, body, out any) error {
	resp, err := c.do(ctx, token, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends the request and returns the response for 2xx statuses only.
func (c *Client) do(ctx context.Context, token, method, path string, body any) (*http.Response, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, parseError(resp)
	}
	return resp, nil
}

func parseError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.Detail, body.Message, body.Error} {
			if m != "" {
				msg = m
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
