// Package propagator reports resolved outcomes back to the origin system
// over a single bounded HTTP call.
package propagator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/tracing"
)

// Payload is the wire form of an outcome notification.
type Payload struct {
	SubjectID  int64  `json:"subjectId"`
	Resource   string `json:"resource"`
	Approved   bool   `json:"approved"`
	ResolvedBy string `json:"resolvedBy"`
	Timestamp  int64  `json:"timestamp"`
}

// Service posts outcome notifications. One attempt only; the origin system
// is expected to run its own timeout and fallback for unanswered requests.
type Service struct {
	endpoint string
	token    string
	client   *http.Client
}

// New creates a propagator for the given origin endpoint and bearer token.
func New(endpoint, token string, options ...Option) *Service {
	s := &Service{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Notify delivers the outcome. Non-2xx responses are returned as errors and
// never retried here.
func (s *Service) Notify(ctx context.Context, subjectID int64, resource string, approved bool, resolvedBy string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "propagator.notify", "CLIENT")
	defer func() { tracing.EndSpan(span, err) }()

	body, err := json.Marshal(&Payload{
		SubjectID:  subjectID,
		Resource:   resource,
		Approved:   approved,
		ResolvedBy: resolvedBy,
		Timestamp:  clock.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build outcome request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		request.Header.Set("Authorization", "Bearer "+s.token)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to propagate outcome to %s: %w", s.endpoint, err)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("origin rejected outcome notification: %s", response.Status)
	}
	return nil
}
