package ingest

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/viant/grantly/service/submit"
)

// Server hosts the webhook surface on its own listener.
type Server struct {
	server *http.Server
}

// NewServer creates a webhook server bound to addr.
func NewServer(addr, token string, submitter *submit.Service) *Server {
	handler := NewHandler(token, submitter)
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(handler),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ingest: server stopped: %v", err)
		}
	}()
}

// Shutdown drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
