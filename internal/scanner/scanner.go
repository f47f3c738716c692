// Package scanner asks a hosted multimodal model to read sender, recipient
// and subject off a scanned document.
package scanner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/models"
)

var (
	ErrUnsupportedType = errors.New("document type is not scannable")
	ErrNoExtraction    = errors.New("scan returned no data")
)

// Outcome is the result class of one scan attempt.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFailed      Outcome = "failed"
	OutcomeUnsupported Outcome = "unsupported"
)

const (
	DefaultEndpoint         = "https://api.anthropic.com/v1/messages"
	DefaultModel            = "claude-sonnet-4-20250514"
	DefaultMaxTokens        = 1000
	DefaultAnthropicVersion = "2023-06-01"
)

const prompt = `Analyze this mail/document and extract:
1. sender: The name or organization sending this (look for "From:", return addresses, letterhead, or signature)
2. recipient: The name or organization receiving this (look for "To:", "Dear", or the main addressee)
3. subject: A brief 5-10 word description of what this mail is about

Respond ONLY with valid JSON like:
{"sender": "...", "recipient": "...", "subject": "..."}

If you cannot determine a field with confidence, use an empty string "". Do not guess.`

// Fields are the values read off a document. Empty means undetermined.
type Fields struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

// Scanner extracts fields from an upload.
type Scanner interface {
	Scan(ctx context.Context, u *models.Upload) (*Fields, error)
}

type Options struct {
	// Endpoint is the messages API or a proxy in front of it.
	Endpoint string
	// APIKey is sent as x-api-key; leave empty behind a proxy that injects it.
	APIKey           string
	Model            string
	MaxTokens        int
	AnthropicVersion string
	Timeout          time.Duration
}

type Client struct {
	opts       Options
	httpClient *http.Client
}

func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.AnthropicVersion == "" {
		opts.AnthropicVersion = DefaultAnthropicVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{opts: opts, httpClient: &http.Client{Timeout: opts.Timeout}}
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string  `json:"type"`
	Source *source `json:"source,omitempty"`
	Text   string  `json:"text,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// MessagesRequest is the body POSTed to the endpoint.
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// BuildRequest wraps the document in a document (PDF) or image block
// followed by the extraction instruction.
func BuildRequest(model string, maxTokens int, u *models.Upload) (*MessagesRequest, error) {
	var block contentBlock
	data := base64.StdEncoding.EncodeToString(u.Data)
	switch {
	case u.IsPDF():
		block = contentBlock{Type: "document", Source: &source{Type: "base64", MediaType: "application/pdf", Data: data}}
	case u.IsImage():
		block = contentBlock{Type: "image", Source: &source{Type: "base64", MediaType: u.MimeType, Data: data}}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, u.MimeType)
	}
	return &MessagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{block, {Type: "text", Text: prompt}},
		}},
	}, nil
}

func (c *Client) Scan(ctx context.Context, u *models.Upload) (*Fields, error) {
	body, err := BuildRequest(c.opts.Model, c.opts.MaxTokens, u)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("x-api-key", c.opts.APIKey)
		req.Header.Set("anthropic-version", c.opts.AnthropicVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan failed: %s; body: %s", resp.Status, truncate(respBody, 300))
	}

	var mr messagesResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExtraction, err)
	}
	var text strings.Builder
	for _, blk := range mr.Content {
		text.WriteString(blk.Text)
	}
	return ParseFields(text.String())
}

// ParseFields decodes the model reply, tolerating markdown code fences.
// A reply that is not a JSON object yields ErrNoExtraction.
func ParseFields(text string) (*Fields, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var f *Fields
	if err := json.Unmarshal([]byte(clean), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExtraction, err)
	}
	if f == nil {
		return nil, ErrNoExtraction
	}
	f.Sender = strings.TrimSpace(f.Sender)
	f.Recipient = strings.TrimSpace(f.Recipient)
	f.Subject = strings.TrimSpace(f.Subject)
	return f, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
