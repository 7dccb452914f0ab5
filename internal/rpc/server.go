package rpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/processor"
	"github.com/msto63/nucmd/pkg/core/config"
	coreGrpc "github.com/msto63/nucmd/pkg/core/grpc"
	"github.com/msto63/nucmd/pkg/core/logging"
)

// Service implements CommandServiceServer on top of a dispatcher
type Service struct {
	d       processor.Dispatcher
	refused []string
}

// NewService creates the command service. Clients may not run the refused
// commands, neither directly nor from a script.
func NewService(d processor.Dispatcher, refused []string) *Service {
	return &Service{d: d, refused: refused}
}

// Invoke dispatches one command. Unknown commands and failed invocations
// are results, not RPC errors; malformed requests are InvalidArgument.
func (s *Service) Invoke(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := invokeRequestFrom(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	name := req.Command
	if name == "" && req.Line != "" {
		if parsed, err := args.ParseLine(req.Line, args.InlineOptions()); err == nil {
			name = parsed.Command
		}
	}
	ctx = processor.Restrict(ctx, s.refused...)
	switch {
	case name == "":
		return nil, status.Error(codes.InvalidArgument, "command required")
	case len(req.Args) > 0 && len(req.Params) > 0:
		return nil, status.Error(codes.InvalidArgument, "use either args or params, not both")
	case processor.Restricted(ctx, name):
		return nil, status.Error(codes.PermissionDenied, fmt.Sprintf("the %s command is not available remotely", name))
	}

	var reply processor.Reply
	switch {
	case req.Command == "":
		reply = s.d.Run(ctx, req.Line)
	case len(req.Args) > 0:
		named := make(map[string]string, len(req.Args))
		for k, v := range req.Args {
			named[k] = args.Stringify(v)
		}
		reply = s.d.ProcessNamed(ctx, name, named)
	default:
		ordered := make([]string, len(req.Params))
		for i, v := range req.Params {
			ordered[i] = args.Stringify(v)
		}
		reply = s.d.Process(ctx, name, ordered)
	}

	result := InvokeResult{
		RequestID:    coreGrpc.GetRequestID(ctx),
		InvocationID: reply.InvocationID,
		Output:       reply.Output,
		Found:        reply.Found,
	}
	if reply.Err != nil {
		result.ErrorCode = mdwerror.GetCode(reply.Err).String()
		result.ErrorMessage = reply.Err.Error()
	}
	return result.toStruct(), nil
}

// ListCommands returns the registered command names
func (s *Service) ListCommands(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := commandsToStruct(s.d.Commands())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Options configures a Server
type Options struct {
	Config    config.GRPCConfig
	Logger    *logging.Logger
	AllowExit bool
	// Restricted names further commands clients may not run
	Restricted []string
}

// Server is the gRPC communicator
type Server struct {
	cfg     coreGrpc.ServerConfig
	logger  *logging.Logger
	refused []string

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewServer creates a gRPC communicator
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.New("nucmd-grpc")
	}
	return &Server{
		cfg:     coreGrpc.ServerConfigFrom(opts.Config),
		logger:  opts.Logger,
		refused: processor.RemoteRestrictions(opts.AllowExit, opts.Restricted...),
	}
}

// Name implements processor.Communicator
func (s *Server) Name() string { return "grpc" }

// Start listens on the configured address and serves until ctx is done or
// Stop is called.
func (s *Server) Start(ctx context.Context, d processor.Dispatcher) error {
	srv := s.build(d)
	lis, err := srv.Listen()
	if err != nil {
		return mdwerror.Wrap(err, "failed to start gRPC server").WithCode(mdwerror.CodeNetworkError)
	}
	return s.serve(ctx, srv, lis)
}

// Serve serves on lis instead of the configured address
func (s *Server) Serve(ctx context.Context, lis net.Listener, d processor.Dispatcher) error {
	return s.serve(ctx, s.build(d), lis)
}

func (s *Server) build(d processor.Dispatcher) *coreGrpc.Server {
	srv := coreGrpc.NewServer(s.cfg, s.logger)
	RegisterCommandServiceServer(srv.GRPCServer(), NewService(d, s.refused))
	srv.SetServing(ServiceName, true)
	return srv
}

func (s *Server) serve(ctx context.Context, srv *coreGrpc.Server, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = lis.Close()
		return nil
	}
	s.cancel = cancel
	s.mu.Unlock()

	return srv.Serve(ctx, lis)
}

// Stop ends Start. It does not block.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
