package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"joyex-backend/internal/accuracy"
	"joyex-backend/internal/logger"
)

const (
	DefaultEndpoint = "https://fal.run/fal-ai/bytedance/seedream/v4/edit"

	// placeholderKey is shipped in sample env files and never authenticates.
	placeholderKey = "demo-key-for-testing"
	outputFormat   = "png"
)

var (
	ErrMissingCredential  = errors.New("fal: FAL_KEY is not configured and demo mode is disabled")
	ErrServiceUnavailable = errors.New("fal: generation service unavailable")
)

// APIError is returned when the generation endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FAL API error: status %d, body: %s", e.StatusCode, e.Body)
}

type Request struct {
	Prompt    string
	ImageURLs []string
	// Size is "{width}x{height}"; anything unparsable means 1024x1024.
	Size     string
	Seed     *int64
	Strength *float64
	Guidance *float64
	// Accuracy overrides the client's default preset for this call.
	Accuracy *accuracy.Config
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type requestBody struct {
	Prompt              string    `json:"prompt"`
	ImageURLs           []string  `json:"image_urls"`
	ImageSize           ImageSize `json:"image_size"`
	Seed                *int64    `json:"seed,omitempty"`
	Strength            *float64  `json:"strength,omitempty"`
	Guidance            *float64  `json:"guidance,omitempty"`
	GuidanceScale       float64   `json:"guidance_scale"`
	NumInferenceSteps   int       `json:"num_inference_steps"`
	EnableSafetyChecker bool      `json:"enable_safety_checker"`
	OutputFormat        string    `json:"output_format"`
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Timings struct {
	Inference float64 `json:"inference"`
}

type Response struct {
	Images    []Image  `json:"images"`
	RequestID string   `json:"request_id,omitempty"`
	Timings   *Timings `json:"timings,omitempty"`
}

type Options struct {
	Endpoint string
	APIKey   string
	// DemoMode returns simulated results instead of calling the API.
	DemoMode   bool
	Timeout    time.Duration
	Accuracy   accuracy.Config
	HTTPClient *http.Client
	// MockDelay overrides the simulated 2-5s latency in demo mode.
	MockDelay func() time.Duration
	Logger    *zap.Logger
}

type Client struct {
	endpoint   string
	apiKey     string
	demoMode   bool
	accuracy   accuracy.Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Response]
	mockDelay  func() time.Duration
	logger     *zap.Logger
}

func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	preset := opts.Accuracy
	if preset.Name == "" {
		preset = accuracy.Get(accuracy.Standard)
	}
	delay := opts.MockDelay
	if delay == nil {
		delay = defaultMockDelay
	}

	breaker := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "fal",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsHealthy,
	})

	return &Client{
		endpoint:   endpoint,
		apiKey:     opts.APIKey,
		demoMode:   opts.DemoMode,
		accuracy:   preset,
		httpClient: httpClient,
		breaker:    breaker,
		mockDelay:  delay,
		logger:     logger.OrNop(opts.Logger),
	}
}

// HasCredential reports whether key looks like a usable FAL key.
func HasCredential(key string) bool {
	return key != "" && key != placeholderKey
}

// Mode is "demo" or "live".
func (c *Client) Mode() string {
	if c.demoMode {
		return "demo"
	}
	return "live"
}

// Generate runs one edit request. There is no retry; a live failure is
// returned to the caller as is.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(req.ImageURLs) == 0 {
		return nil, fmt.Errorf("at least one image url is required")
	}

	if c.demoMode {
		c.logger.Debug("using simulated generation", zap.Int("image_count", len(req.ImageURLs)))
		return c.simulate(ctx, req)
	}

	if !HasCredential(c.apiKey) {
		return nil, ErrMissingCredential
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.call(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return resp, err
}

func (c *Client) call(ctx context.Context, req Request) (*Response, error) {
	body := c.buildBody(req)

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info("calling FAL API",
		zap.Int("prompt_length", len(body.Prompt)),
		zap.Int("image_count", len(body.ImageURLs)),
		zap.Int("width", body.ImageSize.Width),
		zap.Int("height", body.ImageSize.Height),
		zap.Int("num_inference_steps", body.NumInferenceSteps),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("FAL API returned an error", zap.Int("status", resp.StatusCode), zap.String("body", string(respBody)))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	c.logger.Info("FAL API response received",
		zap.Int("images_count", len(result.Images)),
		zap.String("request_id", result.RequestID),
	)

	return &result, nil
}

func (c *Client) buildBody(req Request) requestBody {
	preset := c.accuracy
	if req.Accuracy != nil {
		preset = *req.Accuracy
	}

	width, height := ParseSize(req.Size)

	strength := preset.Strength
	if req.Strength != nil {
		strength = *req.Strength
	}
	guidance := preset.Guidance
	guidanceScale := preset.GuidanceScale
	if req.Guidance != nil {
		guidance = *req.Guidance
		guidanceScale = *req.Guidance
	}

	return requestBody{
		Prompt:              req.Prompt,
		ImageURLs:           req.ImageURLs,
		ImageSize:           ImageSize{Width: width, Height: height},
		Seed:                req.Seed,
		Strength:            &strength,
		Guidance:            &guidance,
		GuidanceScale:       guidanceScale,
		NumInferenceSteps:   preset.InferenceSteps,
		EnableSafetyChecker: preset.EnableSafetyChecker,
		OutputFormat:        outputFormat,
	}
}

// simulate stands in for the API in demo mode: one placeholder image per
// input at the requested size. URLs are random and must be treated as opaque.
func (c *Client) simulate(ctx context.Context, req Request) (*Response, error) {
	if d := c.mockDelay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	width, height := ParseSize(req.Size)
	images := make([]Image, len(req.ImageURLs))
	for i := range images {
		images[i] = Image{
			URL:    fmt.Sprintf("https://picsum.photos/%d/%d?random=%d", width, height, rand.IntN(1000)+i),
			Width:  width,
			Height: height,
		}
	}

	return &Response{
		Images:    images,
		RequestID: "mock_" + strconv.FormatUint(rand.Uint64(), 36),
		Timings:   &Timings{Inference: 2.5 + rand.Float64()*2},
	}, nil
}

func defaultMockDelay() time.Duration {
	return 2*time.Second + rand.N(3*time.Second)
}

// countsAsHealthy keeps caller mistakes and cancellations from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// ValidateImageURLs reports whether every entry is an absolute URL.
func ValidateImageURLs(urls []string) bool {
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
	}
	return true
}
