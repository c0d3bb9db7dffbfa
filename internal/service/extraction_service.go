package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
)

const extractionSystemPrompt = `You convert free-form scheduling preferences into JSON. Respond with a single JSON object using exactly these keys:
"preferred_days": comma-separated full day names, e.g. "Monday, Wednesday", or "" if none stated
"preferred_times": comma-separated ranges in the form "6:00 to 9:00", or "" if none stated
"unavailable_dates": comma-separated ISO dates (YYYY-MM-DD), or "" if none stated
"session_duration": session length in minutes as a number, or 0 if none stated
"weekly_sessions": sessions per week as a number, or 0 if none stated
"monthly_sessions": sessions per month as a number, or 0 if none stated
Do not include any other keys or any prose.`

// ExtractedPreferences is the structured form of a free-text note. The
// string fields keep the engine's textual phrasing so the downstream
// fail-closed parsers stay the single source of truth.
type ExtractedPreferences struct {
	PreferredDays    string      `json:"preferred_days"`
	PreferredTimes   string      `json:"preferred_times"`
	UnavailableDates string      `json:"unavailable_dates"`
	SessionDuration  flexibleInt `json:"session_duration"`
	WeeklySessions   flexibleInt `json:"weekly_sessions"`
	MonthlySessions  flexibleInt `json:"monthly_sessions"`
}

// flexibleInt tolerates models returning numbers as strings.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexibleInt(value)
	return nil
}

// ExtractionConfig governs the chat-completions call.
type ExtractionConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ExtractionService turns free-text preference notes into structured
// fields via an OpenRouter chat-completions call in JSON mode.
type ExtractionService struct {
	client *http.Client
	logger *zap.Logger
	config ExtractionConfig
}

// NewExtractionService constructs an ExtractionService.
func NewExtractionService(client *http.Client, logger *zap.Logger, config ExtractionConfig) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &ExtractionService{client: client, logger: logger, config: config}
}

// Enabled reports whether extraction is configured.
func (s *ExtractionService) Enabled() bool {
	return s.config.Enabled && s.config.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends the note through the model and decodes the JSON reply.
func (s *ExtractionService) Extract(ctx context.Context, note string) (*ExtractedPreferences, error) {
	if !s.Enabled() {
		return nil, appErrors.New("EXTRACTION_DISABLED", http.StatusServiceUnavailable, "preference extraction is not configured")
	}

	payload := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: note},
		},
	}
	payload.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction request: %w", err)
	}

	url := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("extraction model returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return nil, fmt.Errorf("extraction model status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, fmt.Errorf("decode extraction envelope: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("extraction model returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")

	var extracted ExtractedPreferences
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		return nil, fmt.Errorf("decode extracted preferences: %w", err)
	}
	return &extracted, nil
}
