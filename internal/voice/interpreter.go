package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultInterpretTimeout = 15 * time.Second

const systemPrompt = `You turn a spoken grocery utterance into pantry items.
Respond with a JSON array only. Each element must have exactly these keys:
"foodItem" (string), "quantity" (number), "unit" (string, empty if unspecified),
"expirationDate" (mm/dd/yyyy, estimated shelf life from today's date given in
the prompt). No prose, no code fences.`

// InterpreterConfig holds connection settings for the interpretation model.
type InterpreterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Interpreter asks an OpenAI-compatible chat completion endpoint to turn a
// transcript into candidate items. Its output is untrusted and always goes
// through ValidateExtractedItems.
type Interpreter struct {
	cfg        InterpreterConfig
	httpClient *http.Client
}

type InterpreterOption func(*Interpreter)

func WithHTTPClient(c *http.Client) InterpreterOption {
	return func(i *Interpreter) {
		i.httpClient = c
	}
}

func NewInterpreter(cfg InterpreterConfig, opts ...InterpreterOption) *Interpreter {
	timeout := defaultInterpretTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	i := &Interpreter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Configured returns true if the API key is set.
func (i *Interpreter) Configured() bool {
	return i.cfg.APIKey != ""
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Interpret sends the transcript to the model and returns the raw candidate
// payload. now anchors the model's shelf-life estimates; the caller validates
// everything that comes back.
func (i *Interpreter) Interpret(ctx context.Context, transcript string, now time.Time) ([]byte, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("interpret: empty transcript")
	}
	if !i.Configured() {
		return nil, fmt.Errorf("interpret: interpreter not configured: missing API key")
	}

	userPrompt := fmt.Sprintf("Today is %s. Utterance: %s", now.Format("01/02/2006"), transcript)
	payload := chatRequest{
		Model: i.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("interpret: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("interpret: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+i.cfg.APIKey)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("interpret: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("interpret: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("interpret: model API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("interpret: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("interpret: model API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("interpret: empty choices in response")
	}

	content := stripCodeFences(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("interpret: empty completion content")
	}
	return []byte(content), nil
}

// stripCodeFences removes a surrounding markdown fence. Models emit them
// despite instructions often enough to be worth tolerating.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if rest, ok := strings.CutPrefix(strings.TrimLeft(trimmed, " \t\r\n"), "json"); ok {
		trimmed = rest
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
