// Request dispatcher for the CineMate REST API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the hosted CineMate API.
const DefaultBaseURL = "https://movie-recommendation-backend-0ens.onrender.com"

const unauthorizedMessage = "Unauthorized access. Please log in again."

var _ Requester = (*Dispatcher)(nil)

// APIError is a non-2xx response from the API.
//
// It matches [shared.ErrUnauthorized] for 401/403 and [shared.ErrAPIRequest] otherwise.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string { return e.Message }
func (e *APIError) Unwrap() error { return e.kind }

// Unauthorized reports whether the error evicted the credential.
func (e *APIError) Unauthorized() bool {
	return errors.Is(e.kind, shared.ErrUnauthorized)
}

// Rejected reports a 2xx acknowledgement whose payload says the operation did not succeed.
func Rejected(message string) *APIError {
	return &APIError{StatusCode: http.StatusOK, Message: message, kind: shared.ErrAPIRequest}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Dispatcher issues every HTTP call to the API.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	storage    Storage
	limiter    *rate.Limiter
	logger     *log.Logger

	mu             sync.RWMutex
	inFlight       int
	lastErr        error
	onUnauthorized func()
}

// DispatcherOpts configures a [Dispatcher].
type DispatcherOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Storage    Storage       // Holds the bearer credential; nil means never authenticated
	Limiter    *rate.Limiter // Optional
	Logger     *log.Logger
}

// NewDispatcher creates a dispatcher, defaulting to [DefaultBaseURL] and [http.DefaultClient].
func NewDispatcher(opts DispatcherOpts) *Dispatcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Dispatcher{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		storage:    opts.Storage,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
	}
}

// NewLimiter builds a limiter for requestsPerSecond, or nil when it is not positive.
func NewLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// BaseURL returns the API origin requests are sent to.
func (d *Dispatcher) BaseURL() string { return d.baseURL }

// InFlight reports whether any call is outstanding.
func (d *Dispatcher) InFlight() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inFlight > 0
}

// LastError returns the error of the most recent call, or nil once a new call starts.
func (d *Dispatcher) LastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// OnUnauthorized registers fn to run after a 401/403 response has evicted the credential.
func (d *Dispatcher) OnUnauthorized(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onUnauthorized = fn
}

// Credential returns the stored bearer token, if any.
func (d *Dispatcher) Credential() (string, bool) {
	if d.storage == nil {
		return "", false
	}
	token, ok, err := d.storage.Get(repositories.CredentialSlot)
	if err != nil {
		d.logger.Warn("failed to read credential", "error", err)
		return "", false
	}
	return token, ok && token != ""
}

// Do sends one request and decodes a successful JSON response into result (which may be nil).
func (d *Dispatcher) Do(ctx context.Context, method, path string, body, result any) error {
	resp, err := d.Send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if result == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		err = fmt.Errorf("failed to decode response: %w", err)
		d.setLastError(err)
		return err
	}
	return nil
}

// Send performs the request and returns the raw response. Non-2xx statuses are returned as [*APIError].
func (d *Dispatcher) Send(ctx context.Context, method, path string, body any) (resp *APIResponse, err error) {
	if method == "" {
		method = http.MethodGet
	}

	d.begin()
	defer func() { d.end(err) }()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := encodeBody(method, body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	token, authenticated := d.Credential()
	logger := d.logger.With("method", method, "path", path, "request_id", requestID)
	logger.Debug("dispatching request", "authenticated", authenticated)

	httpResp, err := d.client(token).Do(req)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logger.Debug("response received", "status", httpResp.StatusCode, "bytes", len(data))

	resp = &APIResponse{StatusCode: httpResp.StatusCode, Headers: httpResp.Header, Body: data}
	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		resp.IsJSON = true
		resp.JSONData = jsonData
	}

	switch status := httpResp.StatusCode; {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		d.evict()
		return resp, &APIError{StatusCode: status, Message: serverMessage(data, unauthorizedMessage), kind: shared.ErrUnauthorized}
	case status < 200 || status >= 300:
		fallback := fmt.Sprintf("Fetch failed with status: %d", status)
		return resp, &APIError{StatusCode: status, Message: serverMessage(data, fallback), kind: shared.ErrAPIRequest}
	}
	return resp, nil
}

// client returns the base client, or a copy whose transport attaches token as a bearer credential.
func (d *Dispatcher) client(token string) *http.Client {
	if token == "" {
		return d.httpClient
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	authed := *d.httpClient
	authed.Transport = &oauth2.Transport{Source: source, Base: d.httpClient.Transport}
	return &authed
}

func (d *Dispatcher) evict() {
	if d.storage != nil {
		if err := d.storage.Delete(repositories.CredentialSlot); err != nil {
			d.logger.Warn("failed to clear credential", "error", err)
		} else {
			d.logger.Debug("credential cleared after authorization failure")
		}
	}

	d.mu.RLock()
	fn := d.onUnauthorized
	d.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (d *Dispatcher) begin() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight++
	d.lastErr = nil
}

func (d *Dispatcher) end(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	if err != nil {
		d.lastErr = err
	}
}

func (d *Dispatcher) setLastError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = err
}

// encodeBody serializes body for methods that carry one. Raw bytes are sent as-is.
func encodeBody(method string, body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, nil
	}

	switch b := body.(type) {
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// serverMessage extracts the "message" field of an error payload, or returns fallback.
func serverMessage(data []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}
