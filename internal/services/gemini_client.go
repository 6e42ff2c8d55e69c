package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fairwaylabs/caddie/internal/models"
	"github.com/fairwaylabs/caddie/pkg/config"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// offlineMessage is returned when no credential is configured; the
	// bridge never attempts network access in that state.
	offlineMessage = "Sorry, I'm offline right now. I can still keep your scorecard, but the conversation will have to wait."

	// fallbackMessage is returned for every other failure: transport,
	// backend rejection, malformed reply. One failure is terminal for the
	// turn; there are no retries.
	fallbackMessage = "Sorry, I lost my train of thought there. Say that again and I'll keep up."
)

// geminiContent is one role-tagged turn in the request. Caddie turns carry
// role "model" (the model's own prior output), player turns role "user".
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType"`
	ResponseSchema   *Schema `json:"responseSchema"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiClient is the conversation bridge to the generative-language
// backend. Its one public call, SendTurn, never returns an error: every
// failure path resolves to a well-formed fallback reply.
type GeminiClient struct {
	httpClient  *http.Client
	logger      *logrus.Logger
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
}

// NewGeminiClient creates the bridge. A missing API key is detected here,
// once, and every subsequent call short-circuits to the offline reply.
func NewGeminiClient(cfg *config.Config, logger *logrus.Logger) *GeminiClient {
	threshold := cfg.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "gemini-api",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Info("Gemini circuit breaker state changed")
		},
	})

	perMinute := cfg.AIRateLimit
	if perMinute <= 0 {
		perMinute = 30
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not configured; caddie conversation runs in offline mode")
	}

	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: cfg.ExternalAPITimeout,
		},
		logger:      logger,
		apiKey:      cfg.GeminiAPIKey,
		baseURL:     geminiBaseURL,
		model:       cfg.GeminiModel,
		temperature: cfg.GeminiTemperature,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		breaker:     cb,
	}
}

// SendTurn issues one request for the player's latest message. The full
// ordered transcript is sent every time; there is no sliding-window
// truncation. The reply is parsed against the reply schema and returned
// as-is on success; any failure yields the fixed fallback reply.
func (c *GeminiClient) SendTurn(ctx context.Context, transcript []models.ChatMessage, systemPrompt string) *models.CaddieReply {
	if c.apiKey == "" {
		return &models.CaddieReply{
			ConversationalResponse: offlineMessage,
			AudioCue:               models.CueNone,
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.WithError(err).Warn("Gemini request cancelled while rate limited")
		return fallbackReply()
	}

	request := geminiRequest{
		Contents: contentsFromTranscript(transcript),
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      c.temperature,
			ResponseMIMEType: "application/json",
			ResponseSchema:   CaddieReplySchema(),
		},
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generateContent(ctx, request)
	})
	if err != nil {
		c.logger.WithError(err).Error("Gemini request failed")
		return fallbackReply()
	}

	reply, err := ParseReply(raw.([]byte))
	if err != nil {
		c.logger.WithError(err).Error("Gemini reply violated the response schema")
		return fallbackReply()
	}

	return reply
}

// contentsFromTranscript maps the round transcript into the role-tagged
// turn sequence the backend expects, preserving order.
func contentsFromTranscript(transcript []models.ChatMessage) []geminiContent {
	contents := make([]geminiContent, 0, len(transcript))
	for _, msg := range transcript {
		role := "user"
		if msg.Sender == models.SenderCaddie {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}
	return contents
}

// generateContent performs the single HTTP attempt. No retries: a transient
// failure immediately resolves to the fallback, because the player is
// waiting on the reply in real time.
func (c *GeminiClient) generateContent(ctx context.Context, request geminiRequest) ([]byte, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini API request failed with status %d", resp.StatusCode)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	return []byte(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}

func fallbackReply() *models.CaddieReply {
	return &models.CaddieReply{
		ConversationalResponse: fallbackMessage,
		AudioCue:               models.CueNone,
	}
}

// Offline reports whether the bridge is running without a credential.
func (c *GeminiClient) Offline() bool {
	return c.apiKey == ""
}

// IsHealthy reports whether the circuit breaker is closed.
func (c *GeminiClient) IsHealthy() bool {
	return c.breaker.State() == gobreaker.StateClosed
}
