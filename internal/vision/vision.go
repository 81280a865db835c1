package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds vision model configuration from environment variables.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls a hosted vision model to detect items in a photo.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a vision client. If the API key is empty, detection
// is unavailable and DetectItems returns ErrNotConfigured.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// promptScale is the coordinate grid the prompt asks for. Models
// sometimes answer on a 0-1000 grid anyway; ParseDetections detects
// and corrects that.
const promptScale = 100

const detectAllPrompt = `Detect every distinct household item in this image. Respond with ONLY a JSON array, no prose. Each entry must be:
{"box_2d": [ymin, xmin, ymax, xmax], "label": "<short item name>", "category": "<category>", "description": "<one sentence>", "metadata": {"color": "", "material": "", "condition": ""}}
with box coordinates as percentages of the image (0-100).`

const detectTargetHint = `

Only report the %q; ignore everything else in the image.`

// DetectItems sends the image to the vision model and returns the
// detections it reports, with bounding boxes normalized to the unit
// square. target narrows the search to a single named object; empty
// means detect everything.
func (c *Client) DetectItems(ctx context.Context, image []byte, mimeType, target string) ([]Detection, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := detectAllPrompt
	if target != "" {
		prompt += fmt.Sprintf(detectTargetHint, target)
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("vision API returned status %d: %s", resp.StatusCode, detail)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("vision response had no candidates")
	}

	return ParseDetections(gr.Candidates[0].Content.Parts[0].Text, promptScale)
}
