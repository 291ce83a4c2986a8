package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"vid2mp3/domain/transcript"
)

// DefaultModel is the transcription model used unless configured otherwise
const DefaultModel = "mistralai/voxtral-small-24b-2507"

// DefaultMaxUploadBytes is the largest audio payload sent in one request
const DefaultMaxUploadBytes = 10 * 1024 * 1024

const defaultBaseURL = "https://openrouter.ai/api/v1"

// ErrAudioTooLarge is returned when an audio file exceeds the upload limit
var ErrAudioTooLarge = errors.New("audio file too large for transcription")

// transcriptionPrompt instructs the model to answer with strict JSON only.
const transcriptionPrompt = `Transcribe this audio file with precise timestamps for EVERY word.

CRITICAL: Return the result ONLY as JSON, with no comments, explanations or text before or after the JSON.

Required JSON structure:
{
  "text": "full transcription text",
  "words": [
    {
      "word": "first",
      "start": 0.0,
      "end": 0.3
    },
    {
      "word": "word",
      "start": 0.3,
      "end": 0.6
    }
  ]
}

RULES:
- "text" is the full transcription without timestamps
- "words" is an array with ONE object per word
- "word" is the word itself (without punctuation where possible)
- "start" is the word's start time in seconds (floating point)
- "end" is the word's end time in seconds (floating point)
- Times are measured from the start of this audio fragment
- Every word MUST have timestamps
- Return ONLY valid JSON, nothing else`

// Client implements transcript.Transcriber using the OpenRouter
// chat-completions API with audio input.
type Client struct {
	apiKey         string
	model          string
	baseURL        string
	httpClient     *http.Client
	maxUploadBytes int64
	referer        string
	title          string
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithModel sets the transcription model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API base URL (for testing)
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client (for testing)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxUploadBytes sets the per-request audio size limit
func WithMaxUploadBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// NewClient creates a new OpenRouter transcription client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		maxUploadBytes: DefaultMaxUploadBytes,
		referer:        "https://github.com/denisovgp/videotrim",
		title:          "VideoTrim Transcription",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type contentPart struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	InputAudio *inputAudio `json:"input_audio,omitempty"`
}

type inputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// Transcribe implements transcript.Transcriber. When the model's answer
// cannot be parsed as JSON, the transcription text is recovered and a
// transcript without word timestamps is returned.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read audio file: %w", err)
	}
	if info.Size() > c.maxUploadBytes {
		return nil, fmt.Errorf("%w: %.1f MB", ErrAudioTooLarge, float64(info.Size())/1024/1024)
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read audio file: %w", err)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: transcriptionPrompt},
					{
						Type: "input_audio",
						InputAudio: &inputAudio{
							Data:   base64.StdEncoding.EncodeToString(data),
							Format: "mp3",
						},
					},
				},
			},
		},
		Stream: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unexpected response from API: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("API returned status %s", resp.Status)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("unexpected response format from API")
	}

	content := parsed.Choices[0].Message.Content

	tr, err := transcript.Decode(content)
	if err != nil {
		// Model ignored the JSON instructions; salvage the text and let
		// the caller generate approximate word timestamps.
		if text := transcript.ExtractText(content); text != "" {
			return &transcript.Transcript{Text: text}, nil
		}
		return nil, err
	}
	return tr, nil
}

// Ensure Client implements transcript.Transcriber
var _ transcript.Transcriber = (*Client)(nil)
