package ueeshop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ActionSyncGetOrders   = "sync_get_orders"
	ActionSyncGetProducts = "sync_get_products_list"

	// MaxPageSize is the gateway's hard cap on Count.
	MaxPageSize = 100
)

type Config struct {
	BaseURL string
	APIName string
	Number  string
	Secret  string
	APIFrom string
}

type Client struct {
	cfg        Config
	httpClient *http.Client

	// now is swapped in tests so the timestamp (and thus the signature)
	// is deterministic.
	now func() time.Time
}

// APIError is a vendor-reported business failure (ret != 1).
type APIError struct {
	Action string
	Ret    int
	Msg    string
}

func (e *APIError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "UEESHOP_API_ERROR"
	}
	return fmt.Sprintf("ueeshop %s failed (ret=%d): %s", e.Action, e.Ret, msg)
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.APIName == "" {
		cfg.APIName = "openapi"
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// call posts one signed form-encoded request and decodes the envelope.
// Any transport, decode, or ret != 1 outcome is a hard failure for the
// whole page; retry policy belongs to the caller's next scheduled run.
func (c *Client) call(ctx context.Context, action string, biz map[string]any) (*envelope, error) {
	params := map[string]any{
		"ApiName":   c.cfg.APIName,
		"Number":    c.cfg.Number,
		"Action":    action,
		"timestamp": c.now().Unix(),
	}
	if c.cfg.APIFrom != "" {
		params["ApiFrom"] = c.cfg.APIFrom
	}
	for k, v := range biz {
		params[k] = v
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, leafString(v))
	}
	form.Set("Sign", Sign(params, c.cfg.Secret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ueeshop %s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ueeshop %s: request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("ueeshop %s: read response: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ueeshop %s: http %d: %s", action, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("ueeshop %s: decode response: %w", action, err)
	}
	if env.Ret != 1 {
		return nil, &APIError{Action: action, Ret: env.Ret, Msg: env.errMsg()}
	}
	return &env, nil
}
