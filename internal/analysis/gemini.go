package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/projetoswmfa/football-api/internal/pkg/config"
	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiAnalyzer asks Google Gemini for corner/card/both-teams-score reads on
// a live match. One request per match; any failure means no signals for that
// match this cycle.
type GeminiAnalyzer struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Analyzer = (*GeminiAnalyzer)(nil)

func NewGeminiAnalyzer(cfg *config.GeminiConfig) (*GeminiAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiAnalyzer{
		baseURL: defaultGeminiBaseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// marketAnalysis is the JSON shape the prompt asks the model to produce,
// one block per market.
type marketAnalysis struct {
	Confidence int    `json:"confidence"`
	Message    string `json:"message"`
}

type matchAnalysis struct {
	Corners        *marketAnalysis `json:"corners"`
	Cards          *marketAnalysis `json:"cards"`
	BothTeamsScore *marketAnalysis `json:"both_teams_score"`
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, match models.CanonicalMatchRecord) ([]models.Signal, error) {
	prompt := buildPrompt(match)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.2,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var parsed matchAnalysis
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}

	return parsed.signals(match.MatchKey), nil
}

// signals converts the parsed analysis into signal values, skipping markets
// the model declined to rate.
func (a matchAnalysis) signals(matchKey string) []models.Signal {
	out := make([]models.Signal, 0, 3)
	add := func(t models.SignalType, m *marketAnalysis) {
		if m == nil || m.Confidence < 1 {
			return
		}
		conf := m.Confidence
		if conf > 10 {
			conf = 10
		}
		out = append(out, models.Signal{
			MatchKey:   matchKey,
			Type:       t,
			Confidence: conf,
			Message:    m.Message,
		})
	}
	add(models.SignalCorners, a.Corners)
	add(models.SignalCards, a.Cards)
	add(models.SignalBothTeamsScore, a.BothTeamsScore)
	return out
}

func buildPrompt(match models.CanonicalMatchRecord) string {
	best := match.Best
	minute := "unknown"
	if best.Minute != nil {
		minute = fmt.Sprintf("%d", *best.Minute)
	}

	var b strings.Builder
	b.WriteString("You are a football betting analyst. Analyze this live match and respond with JSON only.\n\n")
	fmt.Fprintf(&b, "Match: %s\n", match.MatchName)
	fmt.Fprintf(&b, "Competition: %s\n", best.Competition)
	fmt.Fprintf(&b, "Score: %d-%d\n", best.HomeScore, best.AwayScore)
	fmt.Fprintf(&b, "Minute: %s\n", minute)
	fmt.Fprintf(&b, "Status: %s\n\n", best.Status)
	b.WriteString(`Respond with this exact JSON shape, confidence as an integer 1-10 ` +
		`(omit a market if you have no read on it):
{
  "corners": {"confidence": 0, "message": "..."},
  "cards": {"confidence": 0, "message": "..."},
  "both_teams_score": {"confidence": 0, "message": "..."}
}`)
	return b.String()
}
