package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/album-catalog/internal/album"
	"github.com/nerrad567/album-catalog/internal/auth"
	"github.com/nerrad567/album-catalog/internal/infrastructure/config"
	"github.com/nerrad567/album-catalog/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Database is the subset of the SQL store the server reports on.
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// Counter reports the number of rows in a store.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// ConnectionState reports whether an optional integration is connected.
type ConnectionState interface {
	IsConnected() bool
}

// RequestMetrics records one handled request.
type RequestMetrics interface {
	WriteRequestMetric(method, route string, status int, duration time.Duration)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config        config.APIConfig
	WS            config.WebSocketConfig
	Logger        *logging.Logger
	Authenticator *auth.Authenticator
	Resolver      *auth.SessionResolver
	Albums        *album.Service
	Users         *auth.UserAdmin

	// Optional collaborators. Nil values disable the feature they back.
	DB             Database
	AlbumCounter   Counter
	UserCounter    Counter
	MQTT           ConnectionState
	RequestMetrics RequestMetrics
	Hub            *Hub // If set, the server uses this hub instead of creating its own
	Version        string
}

// Server is the HTTP API server for the album catalog.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	logger         *logging.Logger
	authenticator  *auth.Authenticator
	resolver       *auth.SessionResolver
	albums         *album.Service
	users          *auth.UserAdmin
	db             Database
	albumCounter   Counter
	userCounter    Counter
	mqtt           ConnectionState
	requestMetrics RequestMetrics
	version        string
	startTime      time.Time
	tickets        *ticketStore
	server         *http.Server
	listener       net.Listener
	hub            *Hub
	externalHub    bool
	cancel         context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Authenticator == nil:
		return nil, fmt.Errorf("authenticator is required")
	case deps.Resolver == nil:
		return nil, fmt.Errorf("session resolver is required")
	case deps.Albums == nil:
		return nil, fmt.Errorf("album service is required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user admin is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		logger:         deps.Logger,
		authenticator:  deps.Authenticator,
		resolver:       deps.Resolver,
		albums:         deps.Albums,
		users:          deps.Users,
		db:             deps.DB,
		albumCounter:   deps.AlbumCounter,
		userCounter:    deps.UserCounter,
		mqtt:           deps.MQTT,
		requestMetrics: deps.RequestMetrics,
		version:        deps.Version,
		startTime:      time.Now(),
		tickets:        newTicketStore(ticketTTL),
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WS, deps.Logger)
	}

	return s, nil
}

// Hub returns the WebSocket hub, which doubles as an event publisher.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves HTTP in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}
	go s.cleanTicketsLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Bind synchronously so a port clash is reported to the caller.
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", ln.Addr().String(),
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
