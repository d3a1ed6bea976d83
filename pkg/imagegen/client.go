package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the external image service that renders custom dish pictures
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// GenerateRequest is the body sent to the image service
type GenerateRequest struct {
	DishID      uint     `json:"dish_id"`
	Name        string   `json:"name"`
	Base        string   `json:"base,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Prompt      string   `json:"prompt"`
}

// GenerateResponse is returned by the image service on success
type GenerateResponse struct {
	ImageURL string `json:"image_url"`
}

// ErrorResponse represents an image service error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new image service client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Prompt builds the text description of a dish for the image model
func Prompt(name, base string, ingredients []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A professional food photograph of %s", name)
	if base != "" {
		fmt.Fprintf(&b, " on a %s base", base)
	}
	if len(ingredients) > 0 {
		fmt.Fprintf(&b, " topped with %s", strings.Join(ingredients, ", "))
	}
	b.WriteString(", restaurant plating, natural light")
	return b.String()
}

// Generate asks the image service for a picture and returns its URL
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Prompt == "" {
		req.Prompt = Prompt(req.Name, req.Base, req.Ingredients)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		c.Logger.Error("Image generation request failed", zap.Uint("dish_id", req.DishID), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return "", fmt.Errorf("image service returned %d: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("image service returned %d: %s", resp.StatusCode, errorResp.Error)
	}

	var out GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse image service response: %w", err)
	}
	if out.ImageURL == "" {
		return "", fmt.Errorf("image service returned no image url")
	}

	c.Logger.Info("Generated custom dish image", zap.Uint("dish_id", req.DishID))
	return out.ImageURL, nil
}
