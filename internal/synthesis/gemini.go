package synthesis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fashionmuse/internal/infra"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash-image"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger

	// Timeout bounds one attempt; Retries bounds how often a failed
	// attempt is repeated. The orchestrator never retries; this adapter
	// owns the whole policy.
	Timeout time.Duration
	Retries int
}

// GeminiClient calls the Gemini image editing model: one text prompt plus the
// reference photo in, one restyled image out. When no API key is configured
// it renders deterministic synthetic images so local and CI environments stay
// fully operational.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
	timeout    time.Duration
	retries    int
}

func NewGeminiClient(opts Options) (*GeminiClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("synthesis: invalid base url: %w", err)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &GeminiClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
		timeout:    timeout,
		retries:    retries,
	}, nil
}

// Model reports the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// Synthetic reports whether the client runs without an API key.
func (c *GeminiClient) Synthetic() bool {
	return c.apiKey == ""
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if len(req.ReferenceBytes) == 0 {
		return nil, errors.New("synthesis: reference bytes are required")
	}
	if c.Synthetic() {
		return c.syntheticImage(req), nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		result, err := c.generateOnce(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, err
		}
		if c.logger != nil {
			c.logger.Warn().Err(err).
				Str("job_id", req.JobID).
				Int("slot", req.SlotIndex).
				Int("attempt", attempt+1).
				Msg("synthesis: attempt failed")
		}
	}
	return nil, fmt.Errorf("synthesis: %d attempt(s) failed: %w", c.retries+1, lastErr)
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
	// The v1beta API serves camelCase; requests written snake_case are
	// accepted too, so decode both spellings.
	InlineData      *geminiInlineData `json:"inlineData,omitempty"`
	InlineDataSnake *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) generateOnce(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	mime := req.ReferenceMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	payload := geminiGenerateRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: BuildFashionPrompt(req)},
				{InlineData: &geminiInlineData{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(req.ReferenceBytes),
				}},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			inline := part.InlineData
			if inline == nil {
				inline = part.InlineDataSnake
			}
			if inline == nil || inline.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(inline.Data)
			if err != nil {
				return nil, fmt.Errorf("decode image data: %w", err)
			}
			outMIME := inline.MimeType
			if outMIME == "" {
				outMIME = "image/png"
			}
			return &Result{Data: data, MIME: outMIME}, nil
		}
	}
	return nil, errors.New("gemini response contained no image")
}

// syntheticImage renders a deterministic placeholder so the pipeline can be
// exercised end to end without provider credentials.
func (c *GeminiClient) syntheticImage(req Request) *Result {
	seed := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", req.JobID, req.SlotIndex, req.Prompt)))
	width, height := dimensionsForAspect(req.AspectRatio)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := color.RGBA{R: seed[0], G: seed[1], B: seed[2], A: 255}
	accent := color.RGBA{R: seed[3], G: seed[4], B: seed[5], A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: base}, image.Point{}, draw.Src)
	band := image.Rect(0, height/3, width, 2*height/3)
	draw.Draw(img, band, &image.Uniform{C: accent}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA cannot realistically fail; keep the
		// pipeline moving with an empty PNG if it somehow does.
		return &Result{Data: nil, MIME: "image/png"}
	}
	return &Result{Data: buf.Bytes(), MIME: "image/png"}
}

func dimensionsForAspect(aspect string) (int, int) {
	switch aspect {
	case "landscape":
		return 1280, 960
	case "square":
		return 1024, 1024
	default:
		return 960, 1280
	}
}

var _ Generator = (*GeminiClient)(nil)
