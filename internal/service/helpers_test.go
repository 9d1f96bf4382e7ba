package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/noah-isme/sma-student-portal/internal/repository"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
)

type fakeResponse struct {
	body string
	text string
	err  error
}

type fakeBackend struct {
	mu          sync.Mutex
	responses   map[string]fakeResponse
	calls       []repository.BackendRequest
	credentials [][]*http.Cookie
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{responses: map[string]fakeResponse{}}
}

func (f *fakeBackend) on(method, path string, resp fakeResponse) *fakeBackend {
	f.responses[method+" "+path] = resp
	return f
}

func (f *fakeBackend) Do(ctx context.Context, credentials []*http.Cookie, req repository.BackendRequest, dest interface{}) (*repository.BackendResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.credentials = append(f.credentials, credentials)
	resp, ok := f.responses[req.Method+" "+req.Path]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "unexpected call "+req.Method+" "+req.Path)
	}
	if resp.err != nil {
		return nil, resp.err
	}
	if dest != nil && resp.body != "" {
		if err := json.Unmarshal([]byte(resp.body), dest); err != nil {
			return nil, err
		}
	}
	return &repository.BackendResponse{Status: http.StatusOK, Text: resp.text}, nil
}

func (f *fakeBackend) callsTo(path string) []repository.BackendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.BackendRequest
	for _, c := range f.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}
