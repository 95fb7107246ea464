package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ServiceError is returned when the image-to-text provider answers
// with a non-success status. The response body is kept verbatim so the
// caller can surface the provider's own message.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ocr api error: status=%d, body=%s", e.StatusCode, e.Body)
}

// block is one fragment of recognized text in the provider's response.
type block struct {
	Text string `json:"text"`
}

// Client talks to the image-to-text API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewClient(apiKey, url string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		url:    url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExtractText uploads the image at path and returns the recognized
// text: every non-empty block trimmed and joined with single spaces.
// An image with no readable text yields "" and a nil error; the caller
// decides what an empty result means.
func (c *Client) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy image into form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var blocks []block
	if err := json.Unmarshal(body, &blocks); err != nil {
		return "", fmt.Errorf("unmarshal ocr response: %w, body=%s", err, string(body))
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if text := strings.TrimSpace(b.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
