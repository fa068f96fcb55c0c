// Package remote talks to the Billed REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"billed/internal/core"
	"billed/internal/store"
)

var _ store.BillStore = (*Client)(nil)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. token is sent as a
// bearer JWT when non-empty.
func New(baseURL, token string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote API URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &Client{baseURL: u.String(), token: token, http: httpClient}, nil
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
		},
		Timeout: 30 * time.Second,
	}
}

// ListBills fetches every bill visible to the token and keeps those owned by email.
func (c *Client) ListBills(ctx context.Context, email string) ([]core.Bill, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/bills", nil)
	if err != nil {
		return nil, err
	}

	var bills []core.Bill
	if err := c.do(req, &bills); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	if email == "" {
		return bills, nil
	}
	out := bills[:0]
	for _, b := range bills {
		if strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	return out, nil
}

// CreateAttachment uploads the receipt as a multipart form with the
// owner's email. The API answers with the stored file URL and the new key.
func (c *Client) CreateAttachment(ctx context.Context, a core.Attachment) (core.AttachmentRef, error) {
	if err := core.ValidateFileName(a.FileName); err != nil {
		return core.AttachmentRef{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", a.FileName)
	if err != nil {
		return core.AttachmentRef{}, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := fw.Write(a.Data); err != nil {
		return core.AttachmentRef{}, fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.WriteField("email", a.Email); err != nil {
		return core.AttachmentRef{}, fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return core.AttachmentRef{}, fmt.Errorf("build multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/bills", &body)
	if err != nil {
		return core.AttachmentRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var ref core.AttachmentRef
	if err := c.do(req, &ref); err != nil {
		return core.AttachmentRef{}, fmt.Errorf("create attachment: %w", err)
	}
	if ref.FileName == "" {
		ref.FileName = a.FileName
	}
	return ref, nil
}

// UpdateBill patches the bill stored under b.ID.
func (c *Client) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.ID == "" {
		return core.Bill{}, store.ErrMissingID
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("encode bill: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/bills/"+url.PathEscape(b.ID), bytes.NewReader(payload))
	if err != nil {
		return core.Bill{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var saved core.Bill
	if err := c.do(req, &saved); err != nil {
		return core.Bill{}, fmt.Errorf("update bill %s: %w", b.ID, err)
	}
	if saved.ID == "" {
		saved = b
	}
	return saved, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a JSON body into out. Non-2xx answers become a
// store.StatusError carrying the API's message.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	slog.DebugContext(req.Context(), "Remote API call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &store.StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
