package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	coreGrpc "github.com/msto63/nucmd/pkg/core/grpc"
	"github.com/msto63/nucmd/pkg/core/logging"
)

// Client calls a remote CommandService
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target, e.g. "127.0.0.1:9765"
func Dial(target string, logger *logging.Logger, opts ...grpc.DialOption) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(target)
	cfg.Logger = logger
	conn, err := coreGrpc.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Invoke runs one command remotely
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) (InvokeResult, error) {
	in, err := req.toStruct()
	if err != nil {
		return InvokeResult{}, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, InvokeMethod, in, out); err != nil {
		return InvokeResult{}, err
	}
	return invokeResultFrom(out), nil
}

// Commands lists the remote command names
func (c *Client) Commands(ctx context.Context) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ListCommandsMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return commandsFrom(out), nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
