package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	pathStatus     = "/api/status"
	pathGetSession = "/api/get_session"
	pathUpload     = "/api/upload"
	pathChat       = "/api/chat"
	pathAIChat     = "/api/ai_chat"

	maxResponseSize = 8 << 20
)

// Client talks to the document-question-answering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the server readiness.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, pathStatus, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches the stored chat history for clientID.
func (c *Client) GetSession(ctx context.Context, clientID string) (Session, error) {
	params := url.Values{}
	params.Set("client_id", clientID)

	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, pathGetSession, params, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusOK, Reason: out.Error}
	}
	if out.Session == nil {
		return nil, fmt.Errorf("%w: session payload missing", ErrUnexpectedResponse)
	}
	return out.Session, nil
}

// Chat asks a question about an uploaded document.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return c.chat(ctx, pathChat, req)
}

// AIChat sends a message to the general-purpose assistant.
func (c *Client) AIChat(ctx context.Context, req AIChatRequest) (*ChatResponse, error) {
	return c.chat(ctx, pathAIChat, req)
}

func (c *Client) chat(ctx context.Context, path string, req any) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}
	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, path, nil, bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusOK, Reason: out.Error}
	}
	return &out, nil
}

// Upload sends a PDF as multipart field "file". name is the file name the
// server sees.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(name))))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var out UploadResponse
	if err := c.do(ctx, http.MethodPost, pathUpload, nil, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusOK, Reason: out.Error}
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body io.Reader, out any) error {
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.do(ctx, method, path, params, body, contentType, out)
}

// do performs the request and decodes the JSON body into out. The server
// reports failures as JSON with non-2xx codes, so any status with a JSON
// body is decoded; anything else is a transport failure.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to build url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	slog.Debug("API request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, truncate(string(data), 200))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &Error{StatusCode: resp.StatusCode, Reason: gjson.GetBytes(data, "error").String()}
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
