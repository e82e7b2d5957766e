package simulator

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Server is the simulator HTTP server.
type Server struct {
	config  Config
	logger  zerolog.Logger
	mux     *http.ServeMux
	handler http.Handler

	containers *StateStore[Container]
	blobs      *StateStore[Blob]
	exports    *StateStore[ExportJob]
}

// NewServer creates a simulator with all routes registered.
func NewServer(cfg Config) *Server {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.AccountName == "" {
		cfg.AccountName = "devstoreaccount1"
	}
	if cfg.AccountKey == "" {
		cfg.AccountKey = DefaultAccountKey
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "dbexport-sim").
		Logger()

	mux := http.NewServeMux()

	var handler http.Handler = mux
	handler = AuthPassthroughMiddleware(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = CleanPathMiddleware(handler)

	s := &Server{
		config:     cfg,
		logger:     logger,
		mux:        mux,
		handler:    handler,
		containers: NewStateStore[Container](),
		blobs:      NewStateStore[Blob](),
		exports:    NewStateStore[ExportJob](),
	}
	s.registerHealth()
	s.registerStorage()
	s.registerStorageARM()
	s.registerDAC()
	return s
}

func (s *Server) registerHealth() {
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"account":    s.config.AccountName,
			"containers": s.containers.Keys(),
			"exports":    s.exports.Len(),
		})
	})
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe starts the server and blocks until SIGTERM or SIGINT.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		s.logger.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		done <- srv.Shutdown(ctx)
	}()

	s.printBanner()
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("starting HTTP server")
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return <-done
	}
	return err
}

func (s *Server) printBanner() {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  dbexport simulator\n")
	fmt.Fprintf(os.Stderr, "  Listening on %s\n", s.config.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Storage:  AccountName=%s;AccountKey=%s;BlobEndpoint=http://localhost%s/%s\n",
		s.config.AccountName, s.config.AccountKey, s.config.ListenAddr, s.config.AccountName)
	fmt.Fprintf(os.Stderr, "  DAC:      http://localhost%s/dac\n", s.config.ListenAddr)
	fmt.Fprintf(os.Stderr, "  ARM:      DBEXPORT_AZURE_ENDPOINT_URL=http://localhost%s\n", s.config.ListenAddr)
	fmt.Fprintf(os.Stderr, "\n")
}
