// Package strava is a minimal client for the Strava v3 API, covering the
// activity reads the coaching agent needs. Authentication uses the OAuth2
// refresh-token flow: the access token is cached and renewed shortly before
// it expires.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultTokenURL = "https://www.strava.com/oauth/token"
)

// Credentials holds the OAuth application and athlete tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client talks to the Strava API on behalf of a single athlete.
type Client struct {
	creds    Credentials
	baseURL  string
	tokenURL string
	http     *http.Client
	now      func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(api, token string) Option {
	return func(c *Client) {
		c.baseURL = api
		c.tokenURL = token
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a Strava client from OAuth credentials.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:    creds,
		baseURL:  defaultBaseURL,
		tokenURL: defaultTokenURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activity is a summary activity as returned by the Strava API.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Distance           float64   `json:"distance"` // meters
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	StartDate          time.Time `json:"start_date"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	AverageHeartrate   float64   `json:"average_heartrate,omitempty"`
	SufferScore        float64   `json:"suffer_score,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// token returns a valid access token, refreshing it when expired or missing.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Renew a minute early so in-flight requests don't race the expiry.
	if c.accessToken != "" && c.now().Add(time.Minute).Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.creds.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: unexpected status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.expiresAt = time.Unix(tok.ExpiresAt, 0)
	if tok.RefreshToken != "" {
		c.creds.RefreshToken = tok.RefreshToken
	}
	return c.accessToken, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("strava %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("strava %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Activities returns the athlete's most recent activities.
func (c *Client) Activities(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var acts []Activity
	q := url.Values{"per_page": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/athlete/activities", q, &acts); err != nil {
		return nil, err
	}
	return acts, nil
}

// ActivitiesBetween returns activities within [start, end).
func (c *Client) ActivitiesBetween(ctx context.Context, start, end time.Time, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 30
	}
	var acts []Activity
	q := url.Values{
		"per_page": {strconv.Itoa(limit)},
		"after":    {strconv.FormatInt(start.Unix(), 10)},
		"before":   {strconv.FormatInt(end.Unix(), 10)},
	}
	if err := c.get(ctx, "/athlete/activities", q, &acts); err != nil {
		return nil, err
	}
	return acts, nil
}

// RecentActivities returns activities from the past number of days.
func (c *Client) RecentActivities(ctx context.Context, days, limit int) ([]Activity, error) {
	if days <= 0 {
		days = 7
	}
	end := c.now()
	return c.ActivitiesBetween(ctx, end.AddDate(0, 0, -days), end, limit)
}

// ActivityByID returns the detailed record for one activity.
func (c *Client) ActivityByID(ctx context.Context, id int64) (*Activity, error) {
	var act Activity
	if err := c.get(ctx, fmt.Sprintf("/activities/%d", id), nil, &act); err != nil {
		return nil, err
	}
	return &act, nil
}
