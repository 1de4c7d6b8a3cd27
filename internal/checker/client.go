package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"symptom-checker/internal/types"
)

// Client posts symptom queries to a diagnosis endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds a whole request. Zero leaves only the transport's limits.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Check issues exactly one POST for non-empty symptoms. Errors are one of
// *ValidationError, *TransportError, *ServerError or *ParseError.
func (c *Client) Check(ctx context.Context, symptoms string) (*types.DiagnosisResult, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, &ValidationError{Reason: "symptom text is required"}
	}

	body, err := json.Marshal(types.SymptomQuery{Symptoms: symptoms})
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	return decodeResult(raw)
}

func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return unknownServerError
	}
	if msg, ok := body["error"].(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return checkServerLogs
}

func decodeResult(raw []byte) (*types.DiagnosisResult, error) {
	var out types.DiagnosisResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ParseError{Err: err}
	}
	// absent or null lists cannot be rendered
	if out.ProbableConditions == nil {
		return nil, &ParseError{Err: errors.New("missing probable_conditions")}
	}
	if out.RecommendedNextSteps == nil {
		return nil, &ParseError{Err: errors.New("missing recommended_next_steps")}
	}
	return &out, nil
}
