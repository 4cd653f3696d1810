package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	grpcserver "github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/grpc"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc"
)

// shutdownTimeout bounds graceful shutdown of each listener.
const shutdownTimeout = 10 * time.Second

func (n *Node) initTransports() error {
	rc := n.cfg.RPC
	n.rpcServer = rpc.NewServer(rpc.Services{
		Reader:  n.token,
		Writer:  n,
		Journal: n.journal,
	},
		rpc.WithTimeout(rc.Timeout),
		rpc.WithAllowedOrigins(rc.AllowedOrigins),
		rpc.WithLogger(n.logger),
	)
	n.wsServer = rpc.NewWebSocketServer(n.rpcServer, n.subscriptions)

	if n.cfg.GRPC.Enabled {
		srv, err := grpcserver.NewServer(&grpcserver.ServerConfig{
			Address:        n.cfg.GRPC.Address,
			MaxRecvMsgSize: n.cfg.GRPC.MaxRecvMsgSize,
			MaxSendMsgSize: n.cfg.GRPC.MaxSendMsgSize,
		}, n.logger)
		if err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		n.grpcServer = srv
	}
	return nil
}

// Handler returns the HTTP handler serving JSON-RPC and WebSocket requests.
func (n *Node) Handler() http.Handler {
	return n.rpcServer.Handler(n.wsServer, n.cfg.RPC.WSPath)
}

// RPCAddr returns the JSON-RPC listen address once Run has bound it.
func (n *Node) RPCAddr() string {
	n.addrMu.RLock()
	defer n.addrMu.RUnlock()
	return n.rpcAddr
}

// GRPCAddr returns the gRPC listen address once Run has bound it.
func (n *Node) GRPCAddr() string {
	n.addrMu.RLock()
	defer n.addrMu.RUnlock()
	return n.grpcAddr
}

// Run serves the enabled transports until ctx is cancelled or one of them
// fails, then shuts all of them down. It does not close storage; call Close
// afterwards.
func (n *Node) Run(ctx context.Context) error {
	var (
		httpServer *http.Server
		httpLis    net.Listener
		grpcLis    net.Listener
		err        error
	)

	if n.cfg.RPC.Enabled {
		httpLis, err = net.Listen("tcp", n.cfg.RPC.Address)
		if err != nil {
			return fmt.Errorf("listen rpc: %w", err)
		}
		httpServer = &http.Server{
			Handler:           n.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	if n.grpcServer != nil {
		grpcLis, err = n.grpcServer.Listen()
		if err != nil {
			if httpLis != nil {
				_ = httpLis.Close()
			}
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	n.addrMu.Lock()
	if httpLis != nil {
		n.rpcAddr = httpLis.Addr().String()
	}
	if grpcLis != nil {
		n.grpcAddr = grpcLis.Addr().String()
	}
	n.addrMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	if httpServer != nil {
		g.Go(func() error {
			n.logger.Info("JSON-RPC server listening", "address", httpLis.Addr().String(), "ws_path", n.cfg.RPC.WSPath)
			if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("rpc server: %w", err)
			}
			return nil
		})
	}
	if grpcLis != nil {
		g.Go(func() error {
			if err := n.grpcServer.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		n.grpcServer.SetServing(true)
	}

	g.Go(func() error {
		<-gctx.Done()
		n.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if n.grpcServer != nil {
			n.grpcServer.SetServing(false)
			n.grpcServer.Stop(shutdownCtx)
		}
		n.wsServer.Close()
		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("rpc shutdown: %w", err)
			}
		}
		return nil
	})

	return g.Wait()
}
