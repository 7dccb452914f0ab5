// Package server exposes the processor over websocket connections. Each
// text frame carries one JSON request; every request gets exactly one
// JSON response echoing the request id.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/nucmd/foundation/core/error"
	"github.com/msto63/nucmd/internal/args"
	"github.com/msto63/nucmd/internal/processor"
	"github.com/msto63/nucmd/pkg/core/config"
	"github.com/msto63/nucmd/pkg/core/health"
	"github.com/msto63/nucmd/pkg/core/logging"
)

const healthTimeout = 2 * time.Second

// Options configures a Server
type Options struct {
	Config config.ServerConfig
	Logger *logging.Logger
	// AllowExit lets clients run the exit built-in, which stops the whole
	// processor. Off by default.
	AllowExit bool
	// Restricted names further commands clients may not run, directly or
	// from inside a script
	Restricted []string
	// Health backs /healthz; without it the endpoint answers a plain "ok"
	Health *health.Registry
}

// Server is the websocket communicator
type Server struct {
	cfg      config.ServerConfig
	logger   *logging.Logger
	refused  []string
	health   *health.Registry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	httpSrv *http.Server
	conns   map[*session]struct{}
	closing bool
	stopped chan struct{}
	once    sync.Once
}

// New creates a websocket communicator
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.New("nucmd-websocket")
	}
	s := &Server{
		cfg:     opts.Config,
		logger:  opts.Logger,
		refused: processor.RemoteRestrictions(opts.AllowExit, opts.Restricted...),
		health:  opts.Health,
		conns:   make(map[*session]struct{}),
		stopped: make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Name implements processor.Communicator
func (s *Server) Name() string { return "websocket" }

func (s *Server) address() string {
	port := s.cfg.Port
	if port == 0 {
		port = 8765
	}
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(port))
}

func (s *Server) path() string {
	if s.cfg.Path == "" {
		return "/ws"
	}
	return s.cfg.Path
}

// checkOrigin accepts requests without an Origin header. With no origins
// configured only pages served from the same host may connect.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Handler returns the HTTP handler serving websocket upgrades for d
func (s *Server) Handler(d processor.Dispatcher) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path(), func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Error("WebSocket upgrade failed", "error", err)
			return
		}
		s.serve(r.Context(), conn, d)
	})
	if s.health != nil {
		mux.Handle("/healthz", s.health.Handler(healthTimeout))
	} else {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
	return mux
}

// Start listens on the configured address and serves until ctx is done or
// Stop is called.
func (s *Server) Start(ctx context.Context, d processor.Dispatcher) error {
	ln, err := net.Listen("tcp", s.address())
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen").
			WithCode(mdwerror.CodeNetworkError).
			WithDetail("address", s.address())
	}
	return s.Serve(ctx, ln, d)
}

// Serve accepts connections on ln
func (s *Server) Serve(ctx context.Context, ln net.Listener, d processor.Dispatcher) error {
	srv := &http.Server{
		Handler:           s.Handler(d),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("WebSocket server listening", "address", ln.Addr().String(), "path", s.path())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	case <-s.stopped:
	}

	s.shutdown(srv)
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop ends Start. It does not block.
func (s *Server) Stop() error {
	s.once.Do(func() { close(s.stopped) })
	return nil
}

func (s *Server) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("WebSocket server shutdown incomplete", "error", err)
	}

	s.mu.Lock()
	s.closing = true
	sessions := make([]*session, 0, len(s.conns))
	for c := range s.conns {
		sessions = append(sessions, c)
	}
	s.mu.Unlock()
	for _, c := range sessions {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
	s.logger.Info("WebSocket server stopped")
}

// track registers c; it fails once shutdown has begun
func (s *Server) track(c *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *session) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// session is one websocket connection
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	timeout time.Duration
}

func (c *session) send(resp Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	return c.conn.WriteJSON(resp)
}

func (c *session) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	deadline := time.Now().Add(c.timeout)
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

func (c *session) close(code int, text string) {
	c.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	c.writeMu.Unlock()
	_ = c.conn.Close()
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, d processor.Dispatcher) {
	c := &session{conn: conn, timeout: s.cfg.WriteTimeout.Duration}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if !s.track(c) {
		c.close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer func() {
		s.untrack(c)
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("WebSocket connection established", "remote", remote)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	readTimeout := s.cfg.ReadTimeout.Duration
	if readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
	}

	if interval := s.cfg.PingInterval.Duration; interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := c.ping(); err != nil {
						return
					}
				}
			}
		}()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket read error", "remote", remote, "error", err)
			} else {
				s.logger.Info("WebSocket connection closed", "remote", remote)
			}
			return
		}
		if readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.reply(c, errorResponse("", CodeInvalidMessage, "Invalid message: "+err.Error()))
			continue
		}

		switch req.Type {
		case TypePing:
			s.reply(c, Response{Type: TypePong, ID: req.ID})
		case TypeCommands:
			s.reply(c, Response{Type: TypeCommands, ID: req.ID, Commands: d.Commands()})
		case TypeInvoke:
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.reply(c, s.invoke(ctx, d, req))
			}()
		default:
			s.reply(c, errorResponse(req.ID, CodeUnknownType, "Unknown message type: "+req.Type))
		}
	}
}

func (s *Server) reply(c *session, resp Response) {
	if err := c.send(resp); err != nil {
		s.logger.Error("WebSocket send error", "error", err)
	}
}

// invoke runs one invoke request
func (s *Server) invoke(ctx context.Context, d processor.Dispatcher, req Request) Response {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	name := req.Command
	if name == "" && req.Line != "" {
		if parsed, err := args.ParseLine(req.Line, args.InlineOptions()); err == nil {
			name = parsed.Command
		}
	}
	if name == "" {
		return errorResponse(id, CodeInvalidRequest, "Command required")
	}
	if len(req.Args) > 0 && len(req.Params) > 0 {
		return errorResponse(id, CodeInvalidRequest, "Use either args or params, not both")
	}
	ctx = processor.Restrict(ctx, s.refused...)
	if processor.Restricted(ctx, name) {
		return errorResponse(id, CodeNotAllowed, fmt.Sprintf("The %s command is not available remotely", name))
	}

	var reply processor.Reply
	switch {
	case req.Command == "":
		reply = d.Run(ctx, req.Line)
	case len(req.Args) > 0:
		named := make(map[string]string, len(req.Args))
		for k, v := range req.Args {
			named[k] = args.Stringify(v)
		}
		reply = d.ProcessNamed(ctx, name, named)
	default:
		ordered := make([]string, len(req.Params))
		for i, v := range req.Params {
			ordered[i] = args.Stringify(v)
		}
		reply = d.Process(ctx, name, ordered)
	}

	return resultResponse(id, reply)
}

func resultResponse(id string, reply processor.Reply) Response {
	found := reply.Found
	resp := Response{
		Type:         TypeResult,
		ID:           id,
		InvocationID: reply.InvocationID,
		Output:       reply.Output,
		Found:        &found,
	}
	if reply.Err != nil {
		resp.Error = &ErrorPayload{
			Code:    mdwerror.GetCode(reply.Err).String(),
			Message: reply.Err.Error(),
		}
	}
	return resp
}
