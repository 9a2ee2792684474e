package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

type ChargeRequest struct {
	OrderNo  string         `json:"order_no"`
	AppID    string         `json:"app"`
	Channel  string         `json:"channel"`
	Amount   int64          `json:"amount"`
	ClientIP string         `json:"client_ip"`
	Currency string         `json:"currency"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type RefundRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Gateway is the payment processor surface the workflow depends on.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error)
	CreateRefund(ctx context.Context, chargeID string, req RefundRequest) (*Refund, error)
}

// Client talks to a Pingpp-style REST API. Credentials are immutable and
// injected at construction; there is no package-level singleton.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	var ch Charge
	if err := c.do(ctx, http.MethodPost, "/charges", req, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	var ch Charge
	if err := c.do(ctx, http.MethodGet, "/charges/"+chargeID, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) CreateRefund(ctx context.Context, chargeID string, req RefundRequest) (*Refund, error) {
	var rf Refund
	if err := c.do(ctx, http.MethodPost, "/charges/"+chargeID+"/refunds", req, &rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s %s: %w", method, path, ErrGatewayTimeout)
		}
		return fmt.Errorf("%s %s: %v: %w", method, path, err, ErrGateway)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s: %w", method, path, res.StatusCode, msg, ErrGateway)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode: %v: %w", method, path, err, ErrGateway)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
