package telegram

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
	"sync"
	"time"

	"github.com/jdelaire/sentinelbot/core"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	httpSlack      = 5 * time.Second
	sendTimeout    = 30 * time.Second

	// MaxMessageLen is Telegram's limit on message text, in characters.
	MaxMessageLen = 4096
)

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Client talks to the Telegram Bot API. It implements core.Fetcher,
// core.Sender, core.FileSource and core.ResponseRecorder.
type Client struct {
	botToken string
	client   *http.Client
	baseURL  string

	mu   sync.Mutex
	last []byte
}

// New creates a Telegram client.
func New(botToken string) *Client {
	return &Client{
		botToken: botToken,
		client:   &http.Client{},
		baseURL:  defaultBaseURL,
	}
}

// WithBaseURL overrides the Telegram API base URL (for testing).
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

// LastResponse returns a copy of the last raw body received from the API.
func (c *Client) LastResponse() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	out := make([]byte, len(c.last))
	copy(out, c.last)
	return out
}

func (c *Client) record(raw []byte) {
	c.mu.Lock()
	c.last = raw
	c.mu.Unlock()
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
}

// postJSON calls method with a JSON body and decodes the result into out.
func (c *Client) postJSON(ctx context.Context, method string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &core.TransportError{Op: method, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(b))
	if err != nil {
		return &core.TransportError{Op: method, Err: fmt.Errorf("create request: %w", stripURL(err))}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, out)
}

// do executes req, records the raw response and unwraps the API envelope.
func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &core.TransportError{Op: method, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.TransportError{Op: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.record(raw)

	var env apiResponse
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode != http.StatusOK || decodeErr != nil || !env.OK {
		desc := env.Description
		if desc == "" && decodeErr != nil {
			desc = strings.TrimSpace(string(raw))
		}
		terr := &core.TransportError{Op: method, StatusCode: resp.StatusCode, Description: desc}
		if isTooLong(desc) {
			terr.Err = core.ErrMessageTooLong
		} else if decodeErr != nil && resp.StatusCode == http.StatusOK {
			terr.Err = fmt.Errorf("decode response: %w", decodeErr)
		}
		return terr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &core.TransportError{Op: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// stripURL drops the request URL from net/http errors. The URL carries the
// bot token and the poll offset, and must not reach failure signatures.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}

func isTooLong(desc string) bool {
	d := strings.ToLower(desc)
	return strings.Contains(d, "message is too long") || strings.Contains(d, "caption is too long")
}
