package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/fetch"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetScoreboard fetches the scoreboard for one league.
// GET /soccer/{league}/scoreboard[?dates=YYYYMMDD]
func (c *Client) GetScoreboard(ctx context.Context, league, dates string) (*scoreboardResponse, error) {
	u := fmt.Sprintf("%s/soccer/%s/scoreboard", c.baseURL, league)
	if dates != "" {
		u += "?dates=" + dates
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fetch.Timeout(models.SourceESPN, err)
		}
		return nil, fetch.Unreachable(models.SourceESPN, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fetch.RateLimited(models.SourceESPN)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fetch.Unreachable(models.SourceESPN, fmt.Errorf("status %d", resp.StatusCode))
	}

	var out scoreboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fetch.Malformed(models.SourceESPN, fmt.Errorf("decode scoreboard: %w", err))
	}
	return &out, nil
}
