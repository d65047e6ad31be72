package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/creditrisk/pkg/auth"
	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

const healthService = "credit-risk-service"

// MethodRoles lists the roles allowed to call each method.
var MethodRoles = map[string][]string{
	MethodAssessCustomer: {auth.RoleAnalyst, auth.RoleAPIClient},
	MethodScoreProfile:   {auth.RoleAnalyst, auth.RoleAPIClient},
	MethodGetAssessment:  {auth.RoleAnalyst, auth.RoleAuditor, auth.RoleAPIClient},
	MethodGetModelInfo:   {auth.RoleAnalyst, auth.RoleAuditor, auth.RoleModelAdmin},
}

// ServerOptions configures transport security for the gRPC server.
type ServerOptions struct {
	// Validator enables the JWT interceptor when non-nil.
	Validator   auth.Validator
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server wraps the gRPC server with credit risk handlers.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the credit risk service. The health
// service reports NOT_SERVING until SetServing(true) is called.
func NewServer(handler CreditRiskServiceServer, address string, logger *slog.Logger, opts ServerOptions) (*Server, error) {
	var serverOpts []grpc.ServerOption

	if opts.Validator != nil {
		serverOpts = append(serverOpts, grpc.UnaryInterceptor(auth.UnaryServerInterceptor(
			opts.Validator,
			MethodRoles,
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		)))
	}

	if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
		creds, err := tlsutil.GRPCServerCredentials(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", opts.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)

	RegisterCreditRiskServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// SetServing flips the health status reported for the service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(healthService, st)
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
