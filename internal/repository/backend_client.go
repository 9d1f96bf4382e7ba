package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/pkg/config"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
	"github.com/noah-isme/sma-student-portal/pkg/logger"
	"github.com/noah-isme/sma-student-portal/pkg/middleware/requestid"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type backendObserver interface {
	ObserveBackendCall(method, path string, status int, duration time.Duration)
}

// BackendRequest describes one credentialed call to the REST backend.
type BackendRequest struct {
	Method string
	Path   string
	// Body is JSON encoded when non-nil.
	Body interface{}
	// ContentType overrides the JSON default, e.g. for form posts without a body.
	ContentType string
}

// BackendResponse carries the non-JSON remainder of a successful call.
type BackendResponse struct {
	Status int
	Text   string
}

// BackendClient performs credentialed requests against the student backend.
type BackendClient struct {
	baseURL string
	client  *http.Client
	metrics backendObserver
	logger  *zap.Logger
}

// NewBackendClient builds a client for cfg.BaseURL. A zero timeout leaves calls bounded only by ctx.
func NewBackendClient(cfg config.BackendConfig, metrics backendObserver, logger *zap.Logger) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout, CheckRedirect: noRedirects},
		metrics: metrics,
		logger:  logger,
	}
}

// BaseURL returns the backend origin used for provider login links.
func (c *BackendClient) BaseURL() string {
	return c.baseURL
}

// Do sends req with the browser's session cookies. JSON responses are decoded
// into dest when it is non-nil; anything else is returned as text.
func (c *BackendClient) Do(ctx context.Context, credentials []*http.Cookie, req BackendRequest, dest interface{}) (*BackendResponse, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build backend request")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = contentTypeJSON
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", contentTypeJSON)
	if id := requestid.FromContext(ctx); id != "" {
		httpReq.Header.Set(requestid.HeaderKey, id)
	}
	for _, cookie := range credentials {
		httpReq.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req, 0, duration)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithRequest(ctx, c.logger).Warn("backend unreachable",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, duration)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "read backend response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, appErrors.ErrNotAuthenticated
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		message := strings.TrimSpace(fmt.Sprintf("%s %s failed: %d %s %s",
			req.Method, req.Path, resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(raw))))
		return nil, appErrors.Clone(appErrors.ErrUpstream, message)
	}

	out := &BackendResponse{Status: resp.StatusCode}
	if isJSON(resp.Header.Get("Content-Type")) {
		if dest != nil && len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, dest); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
					fmt.Sprintf("%s %s returned malformed JSON", req.Method, req.Path))
			}
		}
		return out, nil
	}
	out.Text = string(raw)
	return out, nil
}

func (c *BackendClient) observe(req BackendRequest, status int, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveBackendCall(req.Method, req.Path, status, duration)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// noRedirects surfaces backend redirects (typically to its own login page) as
// responses instead of following them with forwarded credentials.
func noRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
