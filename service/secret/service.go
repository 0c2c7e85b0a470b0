// Package secret loads bearer credentials through viant/scy so that tokens
// never sit in plaintext configuration.
package secret

import (
	"context"
	"fmt"

	"github.com/viant/scy"
)

// Service resolves bearer credentials from scy resources.
type Service struct {
	scyService *scy.Service
}

// New creates a new secret service.
func New() *Service {
	return &Service{scyService: scy.New()}
}

// BearerToken loads the plaintext token stored at the given scy resource
// URL, optionally decrypted with key (e.g. "blowfish://default").
func (s *Service) BearerToken(ctx context.Context, sourceURL, key string) (string, error) {
	if sourceURL == "" {
		return "", fmt.Errorf("secret sourceURL was empty")
	}
	resource := scy.NewResource(nil, sourceURL, key)
	loaded, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", sourceURL, err)
	}
	return loaded.String(), nil
}
