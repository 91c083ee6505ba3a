package ayrshare

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 2 << 20

// PostRequest is the body Ayrshare expects for /post and /schedule.
type PostRequest struct {
	Post         string   `json:"post"`
	Platforms    []string `json:"platforms"`
	MediaURLs    []string `json:"mediaUrls"`
	ScheduleDate string   `json:"scheduleDate,omitempty"`
	AutoSchedule bool     `json:"autoSchedule"`
}

// PostResponse keeps the id we store plus the raw body we hand back to the
// caller unchanged.
type PostResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

// APIError is a non-2xx answer from Ayrshare.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "ayrshare: status " + http.StatusText(e.StatusCode) + ": " + e.Body
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient authenticates every request with the account API key as a
// bearer token.
func NewClient(baseURL, apiKey string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	base := &http.Client{Timeout: 15 * time.Second}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = base.Timeout
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

func (c *Client) PostContent(ctx context.Context, req PostRequest) (*PostResponse, error) {
	return c.post(ctx, "/post", req)
}

func (c *Client) SchedulePost(ctx context.Context, req PostRequest) (*PostResponse, error) {
	if req.ScheduleDate == "" {
		return nil, errors.New("scheduleDate is required")
	}
	return c.post(ctx, "/schedule", req)
}

func (c *Client) GetAnalytics(ctx context.Context, postID string) (json.RawMessage, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, errors.New("post id is required")
	}
	return c.do(ctx, http.MethodGet, "/analytics/"+url.PathEscape(postID), nil)
}

func (c *Client) GetAccounts(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/accounts", nil)
}

func (c *Client) ConnectAccount(ctx context.Context, platform string, authData map[string]interface{}) (json.RawMessage, error) {
	if strings.TrimSpace(platform) == "" {
		return nil, errors.New("platform is required")
	}
	body := map[string]interface{}{}
	for k, v := range authData {
		body[k] = v
	}
	body["platform"] = platform
	return c.do(ctx, http.MethodPost, "/connect", body)
}

func (c *Client) GetScheduledPosts(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/schedule", nil)
}

func (c *Client) DeleteScheduledPost(ctx context.Context, postID string) (json.RawMessage, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, errors.New("post id is required")
	}
	return c.do(ctx, http.MethodDelete, "/schedule/"+url.PathEscape(postID), nil)
}

func (c *Client) post(ctx context.Context, path string, req PostRequest) (*PostResponse, error) {
	if req.MediaURLs == nil {
		req.MediaURLs = []string{}
	}
	raw, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var out PostResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode ayrshare post response")
	}
	out.Raw = raw
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode ayrshare request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build ayrshare request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "ayrshare %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read ayrshare response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if len(respBody) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(respBody), nil
}
