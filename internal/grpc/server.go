package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// TokenService is the health service name reported alongside the overall
// server status.
const TokenService = "thermd.Token"

// ErrAlreadyRunning is returned by Serve on a server that is already serving.
var ErrAlreadyRunning = errors.New("grpc: server is already running")

// Server represents the node's gRPC server.
type Server struct {
	mu sync.RWMutex

	// grpcServer is the underlying gRPC server
	grpcServer *grpc.Server

	// health tracks serving status per service
	health *health.Server

	config   *ServerConfig
	listener net.Listener
	running  bool
	logger   *slog.Logger
}

// NewServer creates a new gRPC server with the given configuration. Status
// starts as NOT_SERVING until SetServing is called.
func NewServer(cfg *ServerConfig, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "grpc")

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(logger)),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(TokenService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Listen opens the configured address.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.config.Address)
}

// Serve accepts connections on lis and blocks until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.listener = lis
	s.running = true
	s.mu.Unlock()

	s.logger.Info("gRPC server listening", "address", lis.Addr().String())
	err := s.grpcServer.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// SetServing marks every service SERVING or NOT_SERVING.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(TokenService, status)
}

// Stop marks the server NOT_SERVING and stops it gracefully. If in-flight
// calls have not finished when ctx ends, remaining connections are closed.
// A Serve that starts after Stop returns immediately.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-done
	}
	s.running = false
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GRPCServer returns the underlying grpc.Server.
// This can be used to register additional services.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// UnaryServerInterceptor logs each unary call.
func UnaryServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("unary call", "method", info.FullMethod, "elapsed", time.Since(start), "error", err)
		return resp, err
	}
}

// StreamServerInterceptor logs each streaming call when it ends.
func StreamServerInterceptor(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)
		logger.Debug("stream call", "method", info.FullMethod, "elapsed", time.Since(start), "error", err)
		return err
	}
}
