// Package verse fetches random Bible verses from an external API.
package verse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "avodah/internal/errors"
)

// Verse is the verse API payload. Fields beyond the ones named here are kept
// in Raw so the response can be forwarded unchanged.
type Verse struct {
	PK   int    `json:"pk"`
	Text string `json:"text"`
	Raw  map[string]interface{}
}

// MarshalJSON forwards the original payload.
func (v Verse) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw)
}

// Client calls the verse API.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a verse client for url.
func NewClient(httpClient *http.Client, url string) *Client {
	return &Client{httpClient: httpClient, url: url}
}

// Random fetches one verse. A non-2xx answer or a payload without a verse
// id yields apperrors.ErrVerseUnavailable; transport failures are returned
// as-is.
func (c *Client) Random(ctx context.Context) (*Verse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build verse request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch verse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.ErrVerseUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read verse: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.ErrVerseUnavailable
	}
	var v Verse
	if err := json.Unmarshal(body, &v); err != nil || v.PK == 0 {
		return nil, apperrors.ErrVerseUnavailable
	}
	v.Raw = raw
	return &v, nil
}
