package question

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client fetches question batches from the upstream question source over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a question source client. An empty baseURL or nil
// httpClient falls back to sensible defaults.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type sourceResponse struct {
	OK        bool       `json:"ok"`
	Questions []Question `json:"questions"`
}

// Fetch pulls the question list for a game mode. An ok:false response or an
// empty list is reported as ErrNoQuestions so callers can abort room setup.
func (c *Client) Fetch(ctx context.Context, mode string, count int) ([]Question, error) {
	values := url.Values{}
	values.Set("mode", mode)
	if count > 0 {
		values.Set("count", fmt.Sprint(count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/questions?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("question source non-200: %d", resp.StatusCode)
	}

	var payload sourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if !payload.OK || len(payload.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	return payload.Questions, nil
}
