// Package grpc serves the node's gRPC endpoint: the standard health service
// and server reflection.
package grpc

import (
	"errors"
	"fmt"
	"net"
)

const defaultMaxMsgSize = 4 << 20

var (
	ErrNoAddress      = errors.New("grpc: listen address is required")
	ErrInvalidMsgSize = errors.New("grpc: message size limits must be positive")
)

// ServerConfig holds the listener settings. An empty host listens on every
// interface.
type ServerConfig struct {
	Address        string
	MaxRecvMsgSize int
	MaxSendMsgSize int
}

// DefaultServerConfig listens on the loopback interface with 4MB limits.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:        "127.0.0.1:9090",
		MaxRecvMsgSize: defaultMaxMsgSize,
		MaxSendMsgSize: defaultMaxMsgSize,
	}
}

func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return ErrNoAddress
	}
	if _, port, err := net.SplitHostPort(c.Address); err != nil || port == "" {
		return fmt.Errorf("grpc: invalid listen address %q", c.Address)
	}
	if c.MaxRecvMsgSize <= 0 || c.MaxSendMsgSize <= 0 {
		return fmt.Errorf("%w: recv=%d send=%d", ErrInvalidMsgSize, c.MaxRecvMsgSize, c.MaxSendMsgSize)
	}
	return nil
}
