package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/fairwaylabs/caddie/internal/models"
)

func newTestGeminiClient(baseURL, apiKey string) *GeminiClient {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &GeminiClient{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		logger:      logger,
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       "gemini-2.0-flash",
		temperature: 0.8,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "gemini-api-test",
		}),
	}
}

// geminiSuccessBody wraps a reply payload in the backend's candidate envelope.
func geminiSuccessBody(t *testing.T, reply string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": reply}},
				},
				"finishReason": "STOP",
			},
		},
	})
	require.NoError(t, err)
	return body
}

func testTranscript() []models.ChatMessage {
	return []models.ChatMessage{
		{Sender: models.SenderCaddie, Text: "Par 4, 380 yards. Last time out you made a smooth par here."},
		{Sender: models.SenderPlayer, Text: "Striped a 7-iron right at the pin, ended up in the back bunker."},
	}
}

func TestSendTurnPropagatesExtraction(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "/models/gemini-2.0-flash:generateContent")

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 2, "the full transcript goes up every turn")
		assert.Equal(t, "model", req.Contents[0].Role)
		assert.Equal(t, "user", req.Contents[1].Role)
		require.NotNil(t, req.SystemInstruction)
		assert.Contains(t, req.SystemInstruction.Parts[0].Text, "CURRENT SITUATION:")
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
		require.NotNil(t, req.GenerationConfig.ResponseSchema)

		w.Header().Set("Content-Type", "application/json")
		w.Write(geminiSuccessBody(t, `{
			"conversationalResponse": "That back bunker again! You're short-sided but you've gotten up and down from there before.",
			"extractedData": {"club": "7-Iron", "outcome": "Bunker"},
			"audioCue": "log"
		}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, "test-key")
	course, hole, round, profile := fullContextFixture()
	prompt := BuildSystemPrompt(course, hole, round, profile)

	reply := client.SendTurn(context.Background(), testTranscript(), prompt)

	require.NotNil(t, reply)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "exactly one attempt per turn")
	assert.Equal(t, models.CueLog, reply.AudioCue)
	require.NotNil(t, reply.ExtractedData)
	assert.Equal(t, "7-Iron", *reply.ExtractedData.Club, "extracted values pass through verbatim")
	assert.Equal(t, "Bunker", *reply.ExtractedData.Outcome)
}

func TestSendTurnOfflineWithoutCredential(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, "")

	reply := client.SendTurn(context.Background(), testTranscript(), "prompt")

	require.NotNil(t, reply)
	assert.True(t, client.Offline())
	assert.Equal(t, offlineMessage, reply.ConversationalResponse)
	assert.Nil(t, reply.ExtractedData)
	assert.Equal(t, models.CueNone, reply.AudioCue)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "offline mode never touches the network")
}

func TestSendTurnFallbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Backend rejects the request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
			},
		},
		{
			name: "Candidate text is not JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write(geminiSuccessBody(t, `Sure! Here's my answer in plain prose.`))
			},
		},
		{
			name: "Candidate violates the reply contract",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write(geminiSuccessBody(t, `{"extractedData": {"club": "Driver"}}`))
			},
		},
		{
			name: "Unknown audio cue",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write(geminiSuccessBody(t, `{"conversationalResponse": "Great swing!", "audioCue": "fanfare"}`))
			},
		},
		{
			name: "Empty candidate list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&requests, 1)
				tt.handler(w, r)
			}))
			defer server.Close()

			client := newTestGeminiClient(server.URL, "test-key")
			reply := client.SendTurn(context.Background(), testTranscript(), "prompt")

			require.NotNil(t, reply)
			assert.Equal(t, fallbackMessage, reply.ConversationalResponse)
			assert.Nil(t, reply.ExtractedData, "a failed turn must never surface partial extraction")
			assert.Equal(t, models.CueNone, reply.AudioCue)
			assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "failures are terminal, no retry")
		})
	}
}

func TestSendTurnFallbackOnTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestGeminiClient(server.URL, "test-key")
	reply := client.SendTurn(context.Background(), testTranscript(), "prompt")

	require.NotNil(t, reply)
	assert.Equal(t, fallbackMessage, reply.ConversationalResponse)
	assert.Nil(t, reply.ExtractedData)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL, "test-key")
	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "gemini-api-test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})

	assert.True(t, client.IsHealthy())
	for i := 0; i < 3; i++ {
		reply := client.SendTurn(context.Background(), testTranscript(), "prompt")
		assert.Equal(t, fallbackMessage, reply.ConversationalResponse)
	}
	assert.False(t, client.IsHealthy(), "repeated failures should open the breaker")
}

func TestContentsFromTranscriptRoles(t *testing.T) {
	contents := contentsFromTranscript(testTranscript())

	require.Len(t, contents, 2)
	assert.Equal(t, "model", contents[0].Role)
	assert.Equal(t, "user", contents[1].Role)
	assert.Equal(t, "Striped a 7-iron right at the pin, ended up in the back bunker.", contents[1].Parts[0].Text)
}
