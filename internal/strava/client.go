// Package strava implements the activity-tracking REST client, including
// the OAuth2 authorization-code flow with transparent token refresh.
package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/observability"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultOAuthURL = "https://www.strava.com/oauth"
)

// DefaultScopes is requested when the caller does not override scopes.
var DefaultScopes = []string{"activity:write", "activity:read_all", "profile:read_all"}

// ErrNoRefreshToken indicates the access token expired and no refresh token
// is available to renew it.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ErrEmptyUpdate indicates an update payload with no allow-listed fields.
var ErrEmptyUpdate = errors.New("no valid fields provided for update")

// allowedUpdateFields is the fixed allow-list of mutable activity fields.
var allowedUpdateFields = map[string]struct{}{
	"name":           {},
	"type":           {},
	"sport_type":     {},
	"description":    {},
	"trainer":        {},
	"commute":        {},
	"hide_from_home": {},
	"gear_id":        {},
}

// Config holds client credentials and optional overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// BaseURL / OAuthURL override the provider endpoints, used by tests.
	BaseURL  string
	OAuthURL string

	HTTPClient *http.Client
	Logger     *log.Logger

	// OnTokenRefresh is invoked after every successful exchange or refresh
	// so the session store can persist the new triple.
	OnTokenRefresh func(TokenState)
}

// Client talks to the activity-tracking API on behalf of one user.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	baseURL      string
	oauthURL     string
	httpClient   *http.Client
	logger       *log.Logger
	onRefresh    func(TokenState)

	mu    sync.Mutex
	token TokenState

	now func() time.Time
}

// NewClient constructs a Client from config, applying defaults.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	oauthURL := cfg.OAuthURL
	if oauthURL == "" {
		oauthURL = defaultOAuthURL
	}
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		baseURL:      baseURL,
		oauthURL:     oauthURL,
		httpClient:   httpClient,
		logger:       logger,
		onRefresh:    cfg.OnTokenRefresh,
		now:          time.Now,
	}
}

// SetTokens installs a token triple obtained elsewhere (e.g. a stored session).
func (c *Client) SetTokens(accessToken, refreshToken string, expiresAt int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = TokenState{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: expiresAt}
}

// Tokens returns the current token triple.
func (c *Client) Tokens() TokenState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// AuthorizationURL builds the OAuth authorization URL. Empty scopes request
// DefaultScopes.
func (c *Client) AuthorizationURL(scopes []string) string {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(scopes, ","))
	params.Set("approval_prompt", "force")
	return c.oauthURL + "/authorize?" + params.Encode()
}

// ExchangeCode trades an authorization code for a token triple.
func (c *Client) ExchangeCode(ctx context.Context, code string) (TokenState, *Athlete, error) {
	payload := url.Values{}
	payload.Set("client_id", c.clientID)
	payload.Set("client_secret", c.clientSecret)
	payload.Set("code", code)
	payload.Set("grant_type", "authorization_code")

	resp, err := c.postToken(ctx, payload)
	if err != nil {
		return TokenState{}, nil, fmt.Errorf("token exchange: %w", err)
	}

	token := TokenState{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, ExpiresAt: resp.ExpiresAt}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.notifyRefresh(token)
	return token, resp.Athlete, nil
}

// refreshAccessToken renews the token triple. Callers hold c.mu.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	if c.token.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	payload := url.Values{}
	payload.Set("client_id", c.clientID)
	payload.Set("client_secret", c.clientSecret)
	payload.Set("refresh_token", c.token.RefreshToken)
	payload.Set("grant_type", "refresh_token")

	resp, err := c.postToken(ctx, payload)
	if err != nil {
		return fmt.Errorf("token refresh: %w", err)
	}

	c.token = TokenState{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, ExpiresAt: resp.ExpiresAt}
	c.notifyRefresh(c.token)
	return nil
}

func (c *Client) notifyRefresh(token TokenState) {
	if c.onRefresh != nil {
		c.onRefresh(token)
	}
}

func (c *Client) postToken(ctx context.Context, payload url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL+"/token", strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	started := c.now()
	res, err := c.httpClient.Do(req)
	observability.ObserveTrackerCall("oauth_token", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &token, nil
}

// ensureValidToken errors without a token and refreshes when close to expiry.
func (c *Client) ensureValidToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.AccessToken == "" {
		return domain.ErrNotAuthenticated
	}
	if c.token.expiresSoon(c.now()) {
		c.logger.Printf("access token close to expiry, refreshing")
		return c.refreshAccessToken(ctx)
	}
	return nil
}

// do issues a bearer-authenticated JSON request and decodes the response
// into out when non-nil.
func (c *Client) do(ctx context.Context, method, endpoint, label string, body any, params url.Values, out any) error {
	if err := c.ensureValidToken(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	c.mu.Unlock()
	req.Header.Set("Content-Type", "application/json")

	started := c.now()
	res, err := c.httpClient.Do(req)
	observability.ObserveTrackerCall(label, time.Since(started), err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// GetAthlete fetches the authenticated athlete's profile.
func (c *Client) GetAthlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.do(ctx, http.MethodGet, "/athlete", "get_athlete", nil, nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// CreateActivity creates a new activity. Required fields are validated
// before any network call.
func (c *Client) CreateActivity(ctx context.Context, activity NewActivity) (*Activity, error) {
	if err := activity.Validate(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"name":             activity.Name,
		"sport_type":       string(activity.SportType),
		"start_date_local": activity.StartDateLocal.Format(time.RFC3339),
		"elapsed_time":     activity.ElapsedTime,
	}
	if activity.Description != "" {
		payload["description"] = activity.Description
	}
	if activity.Distance != nil {
		payload["distance"] = *activity.Distance
	}
	payload["trainer"] = activity.Trainer
	payload["commute"] = activity.Commute

	c.logger.Printf("creating activity %q (%s)", activity.Name, activity.SportType)

	var created Activity
	if err := c.do(ctx, http.MethodPost, "/activities", "create_activity", payload, nil, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateActivity applies allow-listed updates to an existing activity. An
// update with no allow-listed fields is a hard error.
func (c *Client) UpdateActivity(ctx context.Context, activityID int64, updates map[string]any) (*Activity, error) {
	payload := make(map[string]any, len(updates))
	for key, value := range updates {
		if _, ok := allowedUpdateFields[key]; ok {
			payload[key] = value
		}
	}
	if len(payload) == 0 {
		return nil, ErrEmptyUpdate
	}

	var updated Activity
	endpoint := fmt.Sprintf("/activities/%d", activityID)
	if err := c.do(ctx, http.MethodPut, endpoint, "update_activity", payload, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetActivity fetches one activity by id.
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	var activity Activity
	endpoint := fmt.Sprintf("/activities/%d", activityID)
	if err := c.do(ctx, http.MethodGet, endpoint, "get_activity", nil, nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListActivities fetches a page of the athlete's activities.
func (c *Client) ListActivities(ctx context.Context, opts ListOptions) ([]Activity, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 30
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(opts.Page))
	params.Set("per_page", strconv.Itoa(opts.PerPage))
	if opts.Before > 0 {
		params.Set("before", strconv.FormatInt(opts.Before, 10))
	}
	if opts.After > 0 {
		params.Set("after", strconv.FormatInt(opts.After, 10))
	}

	var activities []Activity
	if err := c.do(ctx, http.MethodGet, "/athlete/activities", "list_activities", nil, params, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
