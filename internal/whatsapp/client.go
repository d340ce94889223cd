// Package whatsapp is the outbound client for the WhatsApp Business Cloud
// (Graph) API: template submission and resumable media uploads. Approval
// latency and rejection reasons are the upstream service's business.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sendloop/sendloop/internal/template"
)

// DefaultBaseURL is the production Graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// ErrUpstream wraps a Graph API rejection; the upstream message is attached.
var ErrUpstream = errors.New("whatsapp: graph api error")

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// SubmissionResult is the approval service's acknowledgment of a template.
type SubmissionResult struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// MediaHandle references an uploaded asset for use in template headers.
type MediaHandle struct {
	H   string `json:"h"`
	URL string `json:"url,omitempty"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SubmitTemplate posts a composed template payload to the approval service.
func (c *Client) SubmitTemplate(ctx context.Context, wabaID, accessToken string, p *template.Payload) (*SubmissionResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("whatsapp.SubmitTemplate: marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/message_templates", c.baseURL, url.PathEscape(wabaID))

	respBody, err := c.do(ctx, http.MethodPost, endpoint, accessToken, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp.SubmitTemplate: %w", err)
	}

	var result SubmissionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("whatsapp.SubmitTemplate: decode: %w", err)
	}

	log.Debug().Str("waba_id", wabaID).Str("template_id", result.ID).Msg("template submitted")

	return &result, nil
}

// UploadMedia pushes file bytes through the resumable-upload endpoint and
// returns the media handle referenced by template headers.
func (c *Client) UploadMedia(ctx context.Context, wabaID, accessToken, fileType string, file io.Reader) (*MediaHandle, error) {
	endpoint := fmt.Sprintf("%s/%s/uploads?file_type=%s", c.baseURL, url.PathEscape(wabaID), url.QueryEscape(fileType))

	respBody, err := c.do(ctx, http.MethodPost, endpoint, accessToken, fileType, file)
	if err != nil {
		return nil, fmt.Errorf("whatsapp.UploadMedia: %w", err)
	}

	var handle MediaHandle
	if err := json.Unmarshal(respBody, &handle); err != nil {
		return nil, fmt.Errorf("whatsapp.UploadMedia: decode: %w", err)
	}

	return &handle, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, accessToken, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var ge graphError
		if jsonErr := json.Unmarshal(respBody, &ge); jsonErr == nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s (code %d)", ErrUpstream, ge.Error.Message, ge.Error.Code)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return respBody, nil
}
