// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/models"
)

// ErrRateLimited indicates the local request budget for the LLM is
// exhausted. Callers fall back to heuristic analysis.
var ErrRateLimited = errors.New("llm request budget exhausted")

const analyzeSystemPrompt = "You are an expert at analyzing news queries to extract entities, concepts, and determine user intent."

const summarizeSystemPrompt = "You are an expert at summarizing news articles concisely and accurately."

// OpenAIConfig configures the OpenAI analyzer.
type OpenAIConfig struct {
	APIKey string
	Model  string

	// BaseURL optionally points at an OpenAI-compatible endpoint.
	BaseURL string

	// RatePerMinute caps outbound requests. Zero means no cap.
	RatePerMinute int
}

// OpenAIAnalyzer extracts query structure with an OpenAI chat model.
type OpenAIAnalyzer struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewOpenAIAnalyzer creates an OpenAI-backed analyzer.
func NewOpenAIAnalyzer(cfg OpenAIConfig) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai analyzer requires an api key")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	return &OpenAIAnalyzer{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		limiter: limiter,
		logger:  logging.With().Str("component", "llm").Logger(),
	}, nil
}

// Analyze asks the model for a JSON analysis of the query. Any failure
// (rate limit, transport, or unparseable output) returns an error; the
// Service above decides whether to fall back.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, query string, location *models.Coordinate) (models.QueryAnalysis, error) {
	if !a.limiter.Allow() {
		return models.QueryAnalysis{}, ErrRateLimited
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analyzeSystemPrompt),
			openai.UserMessage(buildAnalysisPrompt(query, location)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		return models.QueryAnalysis{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.QueryAnalysis{}, errors.New("openai completion returned no choices")
	}
	return parseAnalysis(completion.Choices[0].Message.Content, location)
}

// Summarize asks the model for a 2-3 sentence article summary.
func (a *OpenAIAnalyzer) Summarize(ctx context.Context, title, description string) (string, error) {
	if !a.limiter.Allow() {
		return "", ErrRateLimited
	}

	prompt := fmt.Sprintf(
		"Summarize this news article in 2-3 sentences, focusing on the key facts and main points:\n\nTitle: %s\nDescription: %s\n\nSummary:",
		title, description)

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarizeSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(150),
	})
	if err != nil {
		return "", fmt.Errorf("openai summary: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai summary returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func buildAnalysisPrompt(query string, location *models.Coordinate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this news query and extract the following information:\nQuery: %q", query)
	if location != nil {
		fmt.Fprintf(&b, "\nUser location: %g, %g", location.Latitude, location.Longitude)
	}
	b.WriteString(`

Please provide a JSON response with:
1. "entities": List of named entities (people, organizations, locations, events)
2. "concepts": List of key concepts and topics
3. "intent": One of: "category", "source", "search", "score", "nearby", "trending"
4. "location": If location is relevant, provide {"latitude": float, "longitude": float}
5. "search_query": If this is a search query, provide the cleaned search terms
6. "category": If a specific category is mentioned (e.g., "technology", "sports", "politics")
7. "source": If a specific news source is mentioned (e.g., "CNN", "BBC", "Reuters")
8. "score_threshold": If relevance score is mentioned, provide the threshold

Examples:
- "Latest technology news" -> intent: "category", category: "technology"
- "News from CNN" -> intent: "source", source: "CNN"
- "Elon Musk Twitter acquisition" -> intent: "search", search_query: "Elon Musk Twitter acquisition"
- "High relevance news" -> intent: "score", score_threshold: 0.7
- "News near me" -> intent: "nearby"
- "What's trending" -> intent: "trending"

Response (JSON only):`)
	return b.String()
}

// jsonBlock matches the outermost brace pair so fenced or chatty model
// output still parses.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

var validIntents = map[models.QueryIntent]bool{
	models.IntentCategory: true,
	models.IntentSource:   true,
	models.IntentSearch:   true,
	models.IntentScore:    true,
	models.IntentNearby:   true,
	models.IntentTrending: true,
}

func parseAnalysis(raw string, location *models.Coordinate) (models.QueryAnalysis, error) {
	block := jsonBlock.FindString(raw)
	if block == "" {
		return models.QueryAnalysis{}, fmt.Errorf("no JSON object in model output %q", raw)
	}

	var analysis models.QueryAnalysis
	if err := json.Unmarshal([]byte(block), &analysis); err != nil {
		return models.QueryAnalysis{}, fmt.Errorf("decode model output: %w", err)
	}

	analysis.Intent = models.QueryIntent(strings.ToLower(string(analysis.Intent)))
	if !validIntents[analysis.Intent] {
		analysis.Intent = models.IntentSearch
	}
	if analysis.Location == nil {
		analysis.Location = location
	}
	return analysis, nil
}
