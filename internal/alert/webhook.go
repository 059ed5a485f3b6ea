package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Alerter delivers a list of issue descriptions to the on-call channel.
type Alerter interface {
	Send(ctx context.Context, issues []string) error
}

// Webhook posts alerts as JSON to an ops webhook endpoint. An empty URL
// turns it into a no-op, which is the default in dev environments.
type Webhook struct {
	URL        string
	Recipients []string
	HTTP       *http.Client
}

func (w *Webhook) Send(ctx context.Context, issues []string) error {
	url := strings.TrimSpace(w.URL)
	if url == "" || len(issues) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"source":     "uee-syncd",
		"recipients": w.Recipients,
		"issues":     issues,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("alert webhook http %d", resp.StatusCode)
	}
	return nil
}
