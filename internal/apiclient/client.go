// Package apiclient talks to the Vivionix REST API on behalf of a signed-in user.
//
// Every call goes through Client.Do, which enforces the idle timeout, attaches the
// bearer token and performs a single refresh-and-retry when the access token is
// rejected. A failed refresh clears the stored credentials.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	defaultLoginPath   = "/api/token/"
	defaultRefreshPath = "/api/token/refresh/"
	maxResponseBytes   = 10 << 20
)

// Config collects the client settings.
type Config struct {
	BaseURL     string
	LoginPath   string
	RefreshPath string
	// IdleTimeout forces a logout when the stored last activity is older. Zero disables the check.
	IdleTimeout time.Duration
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
	Metrics     *Metrics
	Now         func() time.Time
}

// Client is safe for concurrent use; per-user state lives in the TokenStore.
type Client struct {
	baseURL      string
	loginPath    string
	refreshPath  string
	idleTimeout  time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *Metrics
	now          func() time.Time
	refreshGroup singleflight.Group
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("apiclient: base url required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: unsupported scheme %q", parsed.Scheme)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = defaultLoginPath
	}
	refreshPath := cfg.RefreshPath
	if refreshPath == "" {
		refreshPath = defaultRefreshPath
	}
	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		loginPath:   loginPath,
		refreshPath: refreshPath,
		idleTimeout: cfg.IdleTimeout,
		httpClient:  httpClient,
		logger:      logger,
		metrics:     cfg.Metrics,
		now:         now,
	}, nil
}

// IdleTimeout exposes the configured inactivity window.
func (c *Client) IdleTimeout() time.Duration {
	return c.idleTimeout
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return Tokens{}, err
	}
	status, body, err := c.send(ctx, http.MethodPost, c.loginPath, payload, "")
	if err != nil {
		return Tokens{}, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return Tokens{}, ErrInvalidCredentials
	}
	if status < 200 || status > 299 {
		return Tokens{}, c.apiError(http.MethodPost, c.loginPath, status, body)
	}
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Tokens{}, fmt.Errorf("apiclient: decode login response: %w", err)
	}
	if resp.Access == "" {
		return Tokens{}, errors.New("apiclient: login response carried no access token")
	}
	return Tokens{Access: resp.Access, Refresh: resp.Refresh, LastActivity: c.now()}, nil
}

// Get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues an authenticated PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends an authenticated request using the TokenStore attached to ctx.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	store := TokenStoreFromContext(ctx)
	if store == nil {
		return ErrNotAuthenticated
	}
	tokens, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("apiclient: load tokens: %w", err)
	}
	if tokens.Empty() {
		return ErrNotAuthenticated
	}
	now := c.now()
	if tokens.Idle(now, c.idleTimeout) {
		c.logger.Info("api session idle timeout", slog.Time("last_activity", tokens.LastActivity))
		if err := store.Clear(ctx); err != nil {
			c.logger.Warn("clear tokens after timeout", slog.Any("error", err))
		}
		return ErrSessionTimeout
	}
	tokens.LastActivity = now
	if err := store.Save(ctx, tokens); err != nil {
		return fmt.Errorf("apiclient: touch tokens: %w", err)
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode body: %w", err)
		}
	}

	status, respBody, err := c.send(ctx, method, path, payload, tokens.Access)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		refreshed, err := c.refresh(ctx, store, tokens)
		if err != nil {
			return err
		}
		status, respBody, err = c.send(ctx, method, path, payload, refreshed.Access)
		if err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return c.apiError(method, path, status, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

// refresh exchanges the refresh token once per token value, however many
// requests hit a 401 with it at the same time.
func (c *Client) refresh(ctx context.Context, store TokenStore, tokens Tokens) (Tokens, error) {
	if tokens.Refresh == "" {
		c.logout(ctx, store, errors.New("no refresh token"))
		return Tokens{}, ErrSessionExpired
	}
	if current, err := store.Load(ctx); err == nil && current.Access != "" && current.Access != tokens.Access {
		// Another request already refreshed this session.
		return current, nil
	}
	resultCh := c.refreshGroup.DoChan(tokens.Refresh, func() (any, error) {
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		return c.exchange(exchangeCtx, tokens.Refresh)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Tokens{}, ctx.Err()
	case res = <-resultCh:
	}
	if res.Err != nil {
		c.metrics.observeRefresh(false)
		c.logout(ctx, store, res.Err)
		return Tokens{}, fmt.Errorf("%w: %v", ErrSessionExpired, res.Err)
	}
	c.metrics.observeRefresh(true)
	issued := res.Val.(tokenResponse)
	next := Tokens{Access: issued.Access, Refresh: issued.Refresh, LastActivity: c.now()}
	if next.Refresh == "" {
		next.Refresh = tokens.Refresh
	}
	if err := store.Save(ctx, next); err != nil {
		return Tokens{}, fmt.Errorf("apiclient: save refreshed tokens: %w", err)
	}
	return next, nil
}

func (c *Client) exchange(ctx context.Context, refreshToken string) (tokenResponse, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return tokenResponse{}, err
	}
	status, body, err := c.send(ctx, http.MethodPost, c.refreshPath, payload, "")
	if err != nil {
		return tokenResponse{}, err
	}
	if status < 200 || status > 299 {
		return tokenResponse{}, c.apiError(http.MethodPost, c.refreshPath, status, body)
	}
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return tokenResponse{}, fmt.Errorf("apiclient: decode refresh response: %w", err)
	}
	if resp.Access == "" {
		return tokenResponse{}, errors.New("apiclient: refresh response carried no access token")
	}
	return resp, nil
}

func (c *Client) refreshTimeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return 15 * time.Second
}

func (c *Client) logout(ctx context.Context, store TokenStore, cause error) {
	c.logger.Warn("api token refresh failed, logging out", slog.Any("error", cause))
	if err := store.Clear(ctx); err != nil {
		c.logger.Warn("clear tokens after refresh failure", slog.Any("error", err))
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, 0)
		return 0, nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.observeRequest(method, resp.StatusCode)
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("apiclient: read %s %s: %w", method, path, err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) apiError(method, path string, status int, body []byte) error {
	message, fields := parseErrorBody(body)
	return &APIError{Method: method, Path: path, Status: status, Message: message, Fields: fields}
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
