// Package browsertest provides in-memory browser doubles for service and
// middleware tests.
package browsertest

import (
	"context"
	"net/http"
	"sync"

	"github.com/noah-isme/sma-student-portal/internal/browser"
)

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStorage returns empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.values, key)
	return nil
}

// Recorder is a Browser that records navigation instead of writing a response.
type Recorder struct {
	Cookies []*http.Cookie
	Store   *MemoryStorage
	Current string
	Expired bool

	mu          sync.Mutex
	navigations []string
}

// NewRecorder builds a Recorder positioned at location.
func NewRecorder(location string, cookies ...*http.Cookie) *Recorder {
	return &Recorder{Cookies: cookies, Store: NewMemoryStorage(), Current: location}
}

func (r *Recorder) Credentials() []*http.Cookie { return r.Cookies }
func (r *Recorder) Storage() browser.Storage    { return r.Store }
func (r *Recorder) Location() string            { return r.Current }
func (r *Recorder) ExpireCredentials()          { r.Expired = true }

// Navigate records every attempt; Navigated reports the first.
func (r *Recorder) Navigate(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, location)
}

func (r *Recorder) Navigated() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.navigations) == 0 {
		return "", false
	}
	return r.navigations[0], true
}

// Navigations returns every recorded navigation attempt in order.
func (r *Recorder) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

var (
	_ browser.Storage = (*MemoryStorage)(nil)
	_ browser.Browser = (*Recorder)(nil)
)
