package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicedesk/voice-core/core/actions"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client talks to a remote assistant endpoint over HTTP. One request carries
// one utterance; the endpoint replies with text, an optional action, and
// optionally audio in one of three encodings.
type Client struct {
	endpoint string
	apiKey   string

	// advertised actions are serialized into every request so the endpoint
	// only emits actions this client can apply.
	actions []actions.Descriptor

	httpClient *http.Client
}

type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithActions replaces the default advertised action set.
func WithActions(descriptors ...actions.Descriptor) ClientOption {
	return func(c *Client) { c.actions = descriptors }
}

func NewClient(endpoint string, opts ...ClientOption) *Client {
	client := &Client{
		endpoint: endpoint,
		actions:  actions.Defaults(),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type requestBody struct {
	Request
	Actions []actions.Descriptor `json:"actions,omitempty"`
}

// SendMessage performs one round-trip to the assistant endpoint.
//
// A non-2xx status or a transport failure is returned as an error; a reply
// with Success set to false is returned without error so the caller can
// distinguish "the service refused" from "the service is unreachable".
func (c *Client) SendMessage(ctx context.Context, request Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "send assistant message")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.language", request.Language),
		attribute.Bool("request.has_audio", request.AudioEncoded != ""),
	)

	requestBodyBytes, err := json.Marshal(requestBody{Request: request, Actions: c.actions})
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	requestStartTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(
		attribute.Int("response.status_code", resp.StatusCode),
		attribute.Float64("response.round_trip_time", time.Since(requestStartTime).Seconds()),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !parsed.Success {
		logger.WarnContext(ctx, "assistant endpoint refused request", "error", parsed.Error)
	}

	return &parsed, nil
}
