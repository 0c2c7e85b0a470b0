package propagator

import "net/http"

type Option func(*Service)

// WithClient overrides the HTTP client, e.g. to shorten the timeout.
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}
