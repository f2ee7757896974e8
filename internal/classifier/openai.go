package classifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/theopenlane/httpsling"
)

const (
	// defaultBaseURL is the root endpoint for the OpenAI API
	defaultBaseURL = "https://api.openai.com/v1"
	// defaultModel is the completion model used for verdicts. A small model is
	// sufficient because the prompt carries the full analysis method.
	defaultModel = "gpt-4o-mini"
	// defaultTemperature biases sampling toward consistent verdicts
	defaultTemperature = 0.3
	// defaultRequestTimeout bounds a single completion request. The upstream
	// service imposes no bound of its own, so expiry here is what surfaces a
	// hung model as ErrUnavailable.
	defaultRequestTimeout = 60 * time.Second
	// chatCompletionsPath is the chat completions endpoint path
	chatCompletionsPath = "chat/completions"
)

// OpenAI calls the OpenAI chat completions API. It is constructed once at
// service startup, is read-only thereafter, and is safe for concurrent use.
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// Option configures the OpenAI client
type Option func(*OpenAI)

// WithHTTPClient sets a custom HTTP client for completion requests
func WithHTTPClient(client *http.Client) Option {
	return func(c *OpenAI) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default OpenAI API base URL
func WithBaseURL(url string) Option {
	return func(c *OpenAI) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel overrides the default completion model
func WithModel(model string) Option {
	return func(c *OpenAI) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature overrides the default sampling temperature
func WithTemperature(temperature float64) Option {
	return func(c *OpenAI) {
		if temperature >= 0 {
			c.temperature = temperature
		}
	}
}

// New creates an OpenAI classifier client. The API key is required; a missing
// key fails construction so the service refuses to start rather than failing
// on the first request.
func New(apiKey string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &OpenAI{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// chatRequest is the chat completions request body
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage is a single role-tagged message
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat constrains the completion to JSON output
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the chat completions response body
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is a single completion candidate
type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Classify sends the system instruction and prompt to the model and returns
// the raw completion content. All failure modes collapse into ErrUnavailable;
// no retry is attempted.
func (c *OpenAI) Classify(ctx context.Context, systemInstruction, prompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	requester := httpsling.MustNew(
		httpsling.URL(fmt.Sprintf("%s/%s", c.baseURL, chatCompletionsPath)),
		httpsling.Post(),
		httpsling.BearerAuth(c.apiKey),
		httpsling.JSONBody(body),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var completion chatResponse

	resp, err := requester.ReceiveWithContext(ctx, &completion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return completion.Choices[0].Message.Content, nil
}
