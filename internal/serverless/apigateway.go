// Package serverless adapts the HTTP handler tree to AWS Lambda behind
// API Gateway proxy integration.
package serverless

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// APIGatewayAdapter serves API Gateway proxy events with an http.Handler.
type APIGatewayAdapter struct {
	handler http.Handler
}

// NewAPIGatewayAdapter wraps h.
func NewAPIGatewayAdapter(h http.Handler) *APIGatewayAdapter {
	return &APIGatewayAdapter{handler: h}
}

// Handle converts the event to a request, runs the handler and converts the
// recorded response back. It is suitable for lambda.Start.
func (a *APIGatewayAdapter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := newRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	w := newResponseWriter()
	a.handler.ServeHTTP(w, req)

	return w.proxyResponse(), nil
}

func newRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	query := url.Values{}
	for k, vs := range event.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range event.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	target := event.Path
	if target == "" {
		target = "/"
	}
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range event.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range event.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	req.RemoteAddr = event.RequestContext.Identity.SourceIP
	if event.RequestContext.RequestID != "" && req.Header.Get("X-Amzn-Request-Id") == "" {
		req.Header.Set("X-Amzn-Request-Id", event.RequestContext.RequestID)
	}
	req.Host = req.Header.Get("Host")

	return req, nil
}

// responseWriter buffers a handler's response for the proxy integration.
type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) proxyResponse() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(w.header))
	multi := make(map[string][]string, len(w.header))
	for k, vs := range w.header {
		headers[k] = strings.Join(vs, ",")
		multi[k] = append([]string(nil), vs...)
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: multi,
		Body:              w.body.String(),
	}
}
