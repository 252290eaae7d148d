package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// RESTStore inserts profiles through a PostgREST endpoint such as the one
// Supabase exposes at https://<project>.supabase.co/rest/v1.
type RESTStore struct {
	baseURL *url.URL
	key     string
	schema  string // PostgREST profile; empty means the server default
	table   string
	client  *http.Client
}

var _ ProfileStore = (*RESTStore)(nil)

// postgrestError is the error body PostgREST returns on failed requests.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewRESTStore validates the endpoint and prepares a reusable client. A
// schema-qualified table is addressed through PostgREST's profile headers,
// since the path only names the table.
func NewRESTStore(baseURL, key, table string, timeout time.Duration) (*RESTStore, error) {
	parts, err := splitTable(table)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store url must be http(s), got %q", baseURL)
	}
	if key == "" {
		return nil, fmt.Errorf("store key required")
	}

	s := &RESTStore{
		baseURL: u,
		key:     key,
		table:   parts[len(parts)-1],
		client:  &http.Client{Timeout: timeout},
	}
	if len(parts) > 1 {
		s.schema = parts[0]
	}
	return s, nil
}

func (s *RESTStore) tableURL(query url.Values) string {
	u := *s.baseURL
	u.Path = u.Path + "/" + s.table
	u.RawQuery = query.Encode()
	return u.String()
}

func (s *RESTStore) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// InsertProfile POSTs one row and asks PostgREST not to echo it back.
func (s *RESTStore) InsertProfile(ctx context.Context, rec models.ProfileRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return &WriteError{Message: err.Error(), Err: err}
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.tableURL(nil), bytes.NewReader(payload))
	if err != nil {
		return &WriteError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	if s.schema != "" {
		req.Header.Set("Content-Profile", s.schema)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &WriteError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeRESTError(resp)
}

// Ping issues a one-row select to check the endpoint, key and table.
func (s *RESTStore) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")

	req, err := s.newRequest(ctx, http.MethodGet, s.tableURL(q), nil)
	if err != nil {
		return err
	}
	if s.schema != "" {
		req.Header.Set("Accept-Profile", s.schema)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeRESTError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *RESTStore) Close() {
	s.client.CloseIdleConnections()
}

func decodeRESTError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var pe postgrestError
	if err := json.Unmarshal(body, &pe); err == nil && pe.Message != "" {
		return &WriteError{
			Code:    pe.Code,
			Message: pe.Message,
			Err:     fmt.Errorf("postgrest status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	msg := http.StatusText(resp.StatusCode)
	if msg == "" {
		msg = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return &WriteError{
		Code:    fmt.Sprintf("HTTP%d", resp.StatusCode),
		Message: msg,
		Err:     fmt.Errorf("postgrest status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}
