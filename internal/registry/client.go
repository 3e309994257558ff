// Package registry implements the typed Schema Registry HTTP client (C1)
// and the fleet manager that owns a named set of them (C2).
package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// Client is a typed HTTP client bound to one registry endpoint. Its
// lifetime is the process: it is constructed once by the Manager at
// startup and never reconfigured.
type Client struct {
	config     Config
	httpClient *http.Client
	authHeader string
	logger     *slog.Logger
}

// NewClient builds a Client with a pooled shared transport.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}
	if cfg.User != "" {
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.User+":"+cfg.Password))
	}
	return c
}

// Config returns the client's immutable configuration.
func (c *Client) Config() Config { return c.config }

// httpError is a transport-level failure carrying the HTTP status, so
// callers can apply per-status error mapping.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("registry returned %d: %s", e.status, e.body)
}

// doJSON performs one HTTP round-trip with exponential backoff retry on
// network errors, delegating the backoff schedule to the library rather
// than hand-computing it.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
	}

	op := func() (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.config.URL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")
		}
		req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")
		if c.authHeader != "" {
			req.Header.Set("Authorization", c.authHeader)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err // retryable: network failure
		}
		if resp.StatusCode >= 500 {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("registry 5xx: %s", string(b))
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		return 0, srerr.New(srerr.RegistryUnreachable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &httpError{status: resp.StatusCode, body: string(b)}
	}

	if out != nil && len(b) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// TestConnection probes the registry's /subjects endpoint.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	start := time.Now()
	_, err := c.doJSON(ctx, http.MethodGet, "/subjects", nil, nil)
	rtt := time.Since(start).Milliseconds()
	if err != nil {
		return ConnectionStatus{Status: "error", Error: err.Error()}
	}
	return ConnectionStatus{Status: "ok", RTTMs: rtt}
}

// ListContexts lists known contexts on the registry.
func (c *Client) ListContexts(ctx context.Context) ([]string, error) {
	var out []string
	_, err := c.doJSON(ctx, http.MethodGet, "/contexts", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListSubjects lists subjects in the given context. An absent context and
// "." MUST return identical results; both route
// through buildURL, which collapses them identically.
func (c *Client) ListSubjects(ctx context.Context, subjCtx string) ([]string, error) {
	url := buildURL("", subjCtx, "/subjects")
	var out []string
	status, err := c.doJSON(ctx, http.MethodGet, url, nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return []string{}, nil
		}
		return nil, err
	}
	return out, nil
}

// ListVersions lists version numbers for a subject. HTTP 404 maps to an
// empty list, not an error.
func (c *Client) ListVersions(ctx context.Context, subject, subjCtx string) ([]int, error) {
	url := buildURL("", subjCtx, "/subjects/"+pathEscape(subject)+"/versions")
	var out []int
	status, err := c.doJSON(ctx, http.MethodGet, url, nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return []int{}, nil
		}
		return nil, err
	}
	return out, nil
}

// GetSchema fetches one version of a subject.
func (c *Client) GetSchema(ctx context.Context, subject string, version int, subjCtx string) (SchemaRecord, error) {
	url := buildURL("", subjCtx, "/subjects/"+pathEscape(subject)+"/versions/"+strconv.Itoa(version))
	var wire schemaWireRecord
	status, err := c.doJSON(ctx, http.MethodGet, url, nil, &wire)
	if err != nil {
		if status == http.StatusNotFound {
			return SchemaRecord{}, srerr.New(srerr.VersionNotFound, "subject %q version %d not found", subject, version)
		}
		return SchemaRecord{}, err
	}
	if wire.SchemaType == "" {
		wire.SchemaType = SchemaTypeAvro
	}
	return SchemaRecord{
		ID:         wire.ID,
		Version:    wire.Version,
		Subject:    wire.Subject,
		SchemaType: wire.SchemaType,
		SchemaBody: wire.Schema,
	}, nil
}

// RegisterSchema registers a new schema version. If id is non-nil, the
// request carries it and the target registry must already be in IMPORT
// mode — that precondition is the caller's responsibility
// (the migration engine arranges it).
func (c *Client) RegisterSchema(ctx context.Context, subject, body string, schemaType SchemaType, subjCtx string, id *int) (int, error) {
	url := buildURL("", subjCtx, "/subjects/"+pathEscape(subject)+"/versions")
	req := registerRequest{Schema: body, SchemaType: schemaType, ID: id}
	var out registerResponse
	status, err := c.doJSON(ctx, http.MethodPost, url, req, &out)
	if err != nil {
		if status == http.StatusConflict {
			// A 409 under migration means "already exists" — surface
			// success with the existing id rather than an error.
			existing, getErr := c.findExistingID(ctx, subject, body, subjCtx)
			if getErr == nil {
				return existing, nil
			}
			return 0, srerr.New(srerr.ConflictExists, "subject %q already has an equivalent schema", subject)
		}
		if status == http.StatusUnprocessableEntity {
			return 0, srerr.New(srerr.SchemaInvalid, "registry rejected schema for subject %q: %v", subject, err)
		}
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) findExistingID(ctx context.Context, subject, body, subjCtx string) (int, error) {
	versions, err := c.ListVersions(ctx, subject, subjCtx)
	if err != nil || len(versions) == 0 {
		return 0, fmt.Errorf("no existing version found for subject %q", subject)
	}
	latest, err := c.GetSchema(ctx, subject, versions[len(versions)-1], subjCtx)
	if err != nil {
		return 0, err
	}
	return latest.ID, nil
}

// DeleteSubject soft-deletes a subject and returns the deleted versions.
func (c *Client) DeleteSubject(ctx context.Context, subject, subjCtx string) ([]int, error) {
	url := buildURL("", subjCtx, "/subjects/"+pathEscape(subject))
	var out []int
	_, err := c.doJSON(ctx, http.MethodDelete, url, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetGlobalConfig fetches the context-global compatibility setting.
func (c *Client) GetGlobalConfig(ctx context.Context, subjCtx string) (CompatibilityLevel, error) {
	url := buildURL("", subjCtx, "/config")
	var out configResponse
	_, err := c.doJSON(ctx, http.MethodGet, url, nil, &out)
	if err != nil {
		return "", err
	}
	return out.CompatibilityLevel, nil
}

// SetGlobalConfig sets the context-global compatibility setting.
func (c *Client) SetGlobalConfig(ctx context.Context, subjCtx string, level CompatibilityLevel) error {
	url := buildURL("", subjCtx, "/config")
	_, err := c.doJSON(ctx, http.MethodPut, url, configRequest{Compatibility: level}, nil)
	return err
}

// GetSubjectConfig fetches a subject-level compatibility override.
func (c *Client) GetSubjectConfig(ctx context.Context, subject, subjCtx string) (CompatibilityLevel, error) {
	url := buildURL("", subjCtx, "/config/"+pathEscape(subject))
	var out configResponse
	_, err := c.doJSON(ctx, http.MethodGet, url, nil, &out)
	if err != nil {
		return "", err
	}
	return out.CompatibilityLevel, nil
}

// SetSubjectConfig sets a subject-level compatibility override.
func (c *Client) SetSubjectConfig(ctx context.Context, subject, subjCtx string, level CompatibilityLevel) error {
	url := buildURL("", subjCtx, "/config/"+pathEscape(subject))
	_, err := c.doJSON(ctx, http.MethodPut, url, configRequest{Compatibility: level}, nil)
	return err
}

// GetMode fetches the mode for a context, or for one subject within it.
func (c *Client) GetMode(ctx context.Context, subjCtx, subject string) (Mode, error) {
	path := "/mode"
	if subject != "" {
		path = "/mode/" + pathEscape(subject)
	}
	url := buildURL("", subjCtx, path)
	var out modeResponse
	_, err := c.doJSON(ctx, http.MethodGet, url, nil, &out)
	if err != nil {
		return "", err
	}
	return out.Mode, nil
}

// SetMode sets the mode for a context, or for one subject within it, with a
// single request at that granularity; it does not retry at a more general
// level. A 405 response is returned as ImportModeUnsupported. The migration
// engine sets IMPORT at the subject level only and, when that is rejected,
// migrates without preserving ids.
func (c *Client) SetMode(ctx context.Context, subjCtx, subject string, mode Mode) error {
	path := "/mode"
	if subject != "" {
		path = "/mode/" + pathEscape(subject)
	}
	url := buildURL("", subjCtx, path)
	status, err := c.doJSON(ctx, http.MethodPut, url, modeRequest{Mode: mode}, nil)
	if err != nil {
		if status == http.StatusMethodNotAllowed {
			return srerr.New(srerr.ImportModeUnsupported, "registry rejected mode change to %s", mode)
		}
		return err
	}
	return nil
}

// CheckCompatibility checks a candidate schema body against a subject's
// latest version.
func (c *Client) CheckCompatibility(ctx context.Context, subject, body string, schemaType SchemaType, subjCtx string) (bool, []string, error) {
	url := buildURL("", subjCtx, "/compatibility/subjects/"+pathEscape(subject)+"/versions/latest")
	req := registerRequest{Schema: body, SchemaType: schemaType}
	var out compatibilityCheckResponse
	_, err := c.doJSON(ctx, http.MethodPost, url, req, &out)
	if err != nil {
		return false, nil, err
	}
	return out.IsCompatible, out.Messages, nil
}

func pathEscape(s string) string {
	// Subject names are registry identifiers, not arbitrary user text; the
	// registry API only ever sees characters that are already URL-safe in
	// practice, but escape defensively against "/" and whitespace.
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '/' || b == ' ' || b == '?' || b == '#':
			out = append(out, '%', hexDigit(b>>4), hexDigit(b&0xf))
		default:
			out = append(out, b)
		}
	}
	return string(out)
}

func hexDigit(b byte) byte {
	if b < 10 {
		return '0' + b
	}
	return 'a' + (b - 10)
}
