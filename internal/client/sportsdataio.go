package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nfl_pickem/ingestion/internal/cache"
	"nfl_pickem/ingestion/internal/metrics"
	"nfl_pickem/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Cache stores raw upstream responses that rarely change
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client is the SportsDataIO NFL API client
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration

	cache    Cache
	teamsTTL time.Duration
}

// NewClient creates a new SportsDataIO API client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Create rate limiter (max 20 concurrent requests, burst of 20)
	rateLimiter := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithCache enables response caching for the team list
func (c *Client) WithCache(cache Cache, teamsTTL time.Duration) *Client {
	c.cache = cache
	c.teamsTTL = teamsTTL
	return c
}

// seasonCode converts a season year into the provider's regular-season code
func seasonCode(season string) string {
	return season + "REG"
}

// get performs a GET request to the SportsDataIO API with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				metrics.RecordAPICall(endpoint, "cancelled", time.Since(start).Seconds())
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.do(ctx, url, attempt)
		if err == nil {
			metrics.RecordAPICall(endpoint, "success", time.Since(start).Seconds())
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
	metrics.RecordError("client", endpoint)
	return nil, lastErr
}

// do performs a single attempt; retry reports whether the failure is transient
func (c *Client) do(ctx context.Context, url string, attempt int) (body []byte, retry bool, err error) {
	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NFL-Pickem/1.0")

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Int("attempt", attempt+1).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Retry on network errors unless the caller gave up
		return nil, ctx.Err() == nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, false, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Msg("Received retryable error")
		return nil, true, fmt.Errorf("API returned retryable status %d: %s", resp.StatusCode, string(body))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, fmt.Errorf("API authentication failed (status %d): %s", resp.StatusCode, string(body))

	default:
		return nil, false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}

// FetchTeams fetches all active teams, served from cache when available
func (c *Client) FetchTeams(ctx context.Context) ([]models.Team, error) {
	key := cache.Key("teams")

	var body []byte
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("Team cache read failed, fetching from API")
		} else if ok {
			body = cached
		}
	}

	fromAPI := body == nil
	if fromAPI {
		var err error
		body, err = c.get(ctx, "teams", "scores/json/Teams")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch teams: %w", err)
		}
	}

	var inputs []models.TeamInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal teams: %w", err)
	}

	if fromAPI && c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.teamsTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache teams")
		}
	}

	teams := make([]models.Team, 0, len(inputs))
	for i := range inputs {
		if inputs[i].Key == "" {
			continue
		}
		teams = append(teams, *inputs[i].ToTeam())
	}
	return teams, nil
}

func (c *Client) fetchScoresByWeek(ctx context.Context, season string, week int) ([]models.GameInput, error) {
	path := fmt.Sprintf("scores/json/ScoresByWeek/%s/%d", seasonCode(season), week)
	body, err := c.get(ctx, "scores_by_week", path)
	if err != nil {
		return nil, err
	}

	var games []models.GameInput
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal games: %w", err)
	}
	return games, nil
}

// FetchSchedule fetches the games of one regular-season week
func (c *Client) FetchSchedule(ctx context.Context, season string, week int) ([]models.Game, error) {
	inputs, err := c.fetchScoresByWeek(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	games := make([]models.Game, 0, len(inputs))
	for i := range inputs {
		game, err := inputs[i].ToGame(season)
		if err != nil {
			log.Warn().Err(err).Int("score_id", inputs[i].ScoreID).Msg("Skipping game")
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}

// FetchScores fetches status and score updates for one week
func (c *Client) FetchScores(ctx context.Context, season string, week int) ([]models.ScoreUpdate, error) {
	inputs, err := c.fetchScoresByWeek(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}

	updates := make([]models.ScoreUpdate, 0, len(inputs))
	for i := range inputs {
		update, err := inputs[i].ToScoreUpdate()
		if err != nil {
			log.Warn().Err(err).Int("score_id", inputs[i].ScoreID).Msg("Skipping score")
			continue
		}
		updates = append(updates, *update)
	}
	return updates, nil
}

// FetchOdds fetches pregame odds for one week, one row per game and sportsbook
func (c *Client) FetchOdds(ctx context.Context, season string, week int) ([]models.Odds, error) {
	path := fmt.Sprintf("odds/json/GameOddsByWeek/%s/%d", seasonCode(season), week)
	body, err := c.get(ctx, "odds_by_week", path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}

	var games []models.GameOddsResponse
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal odds: %w", err)
	}

	fetchedAt := time.Now().UTC()
	var odds []models.Odds
	for _, g := range games {
		seen := make(map[string]bool, len(g.PregameOdds))
		for i := range g.PregameOdds {
			book := g.PregameOdds[i].Sportsbook
			if book == "" || seen[book] {
				continue
			}
			seen[book] = true
			odds = append(odds, *g.PregameOdds[i].ToOdds(g.ScoreID, fetchedAt))
		}
	}
	return odds, nil
}
