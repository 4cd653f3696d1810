package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc/rpc_types"
)

const (
	wsMaxMessageSize = 512 * 1024
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsWriteWait      = 10 * time.Second
	wsSendBuffer     = 256
)

// WebSocketServer handles WebSocket connections for RPC calls and event
// subscriptions.
type WebSocketServer struct {
	upgrader            websocket.Upgrader
	rpc                 *Server
	subscriptionManager *SubscriptionManager
	connections         map[string]*WebSocketConnection
	connectionsMutex    sync.RWMutex
	nextID              atomic.Uint64
	logger              *slog.Logger
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	*Connection
	conn      *websocket.Conn
	clientIP  string
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWebSocketServer serves rpc's methods over WebSocket and registers
// subscribers with manager.
func NewWebSocketServer(rpc *Server, manager *SubscriptionManager) *WebSocketServer {
	ws := &WebSocketServer{
		rpc:                 rpc,
		subscriptionManager: manager,
		connections:         make(map[string]*WebSocketConnection),
		logger:              rpc.logger.With("transport", "ws"),
	}
	ws.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || rpc.originAllowed(origin)
		},
	}
	return ws
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Debug("upgrade failed", "error", err)
		return
	}

	// The request context ends when ServeHTTP returns.
	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WebSocketConnection{
		Connection: newConnection(fmt.Sprintf("conn_%d", ws.nextID.Add(1)), wsSendBuffer),
		conn:       conn,
		clientIP:   getClientIP(r),
		ctx:        ctx,
		cancel:     cancel,
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	ws.subscriptionManager.AddConnection(wsConn.Connection)

	ws.logger.Debug("connection opened", "conn", wsConn.ID, "client", wsConn.clientIP)

	go ws.handleConnection(wsConn)
	go ws.handleSend(wsConn)
}

// handleConnection reads messages until the peer goes away
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	_ = wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("read failed", "conn", wsConn.ID, "error", err)
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// handleSend writes queued messages and keeps the connection alive with pings
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsConn.ctx.Done():
			return
		case <-ticker.C:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		case message := <-wsConn.send:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.logger.Debug("send failed", "conn", wsConn.ID, "error", err)
				ws.closeConnection(wsConn)
				return
			}
		}
	}
}

// handleMessage processes a single command. Commands are flat objects:
// {"command": "balance", "id": 1, "account": "0x..."}.
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()), nil)
		return
	}

	var cmd WebSocketCommand
	if raw, ok := cmdMap["id"]; ok {
		_ = json.Unmarshal(raw, &cmd.ID)
	}
	if raw, ok := cmdMap["command"]; ok {
		_ = json.Unmarshal(raw, &cmd.Command)
	}
	if cmd.Command == "" {
		ws.sendError(wsConn, NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field"), cmd.ID)
		return
	}

	delete(cmdMap, "command")
	delete(cmdMap, "id")
	if len(cmdMap) > 0 {
		cmd.Params, _ = json.Marshal(cmdMap)
	}

	switch cmd.Command {
	case "subscribe":
		ws.handleSubscription(wsConn, cmd, true)
	case "unsubscribe":
		ws.handleSubscription(wsConn, cmd, false)
	default:
		result, rpcErr := ws.rpc.executeMethod(wsConn.ctx, cmd.Command, cmd.Params, wsConn.clientIP)
		if rpcErr != nil {
			ws.sendError(wsConn, rpcErr, cmd.ID)
			return
		}
		ws.sendResponse(wsConn, WebSocketResponse{
			Type:   "response",
			ID:     cmd.ID,
			Status: "success",
			Result: result,
		})
	}
}

func (ws *WebSocketServer) handleSubscription(wsConn *WebSocketConnection, cmd WebSocketCommand, subscribe bool) {
	var request SubscriptionRequest
	if len(cmd.Params) > 0 {
		if err := json.Unmarshal(cmd.Params, &request); err != nil {
			ws.sendError(wsConn, RpcErrorInvalidParams("Invalid subscription parameters"), cmd.ID)
			return
		}
	}

	var (
		rpcErr *RpcError
		result map[string]interface{}
	)
	if subscribe {
		rpcErr = ws.subscriptionManager.HandleSubscribe(wsConn.Connection, request)
		result = map[string]interface{}{"subscribed": true}
	} else {
		rpcErr = ws.subscriptionManager.HandleUnsubscribe(wsConn.Connection, request)
		result = map[string]interface{}{"unsubscribed": true}
	}
	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, cmd.ID)
		return
	}

	ws.sendResponse(wsConn, WebSocketResponse{
		Type:   "response",
		ID:     cmd.ID,
		Status: "success",
		Result: result,
	})
}

// sendResponse sends a WebSocket response
func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.logger.Warn("failed to marshal response", "error", err)
		return
	}
	ws.enqueue(wsConn, data)
}

// sendError sends an error response with flat error fields
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *RpcError, id interface{}) {
	ws.sendResponse(wsConn, WebSocketResponse{
		Type:         "response",
		ID:           id,
		Status:       "error",
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	})
}

func (ws *WebSocketServer) enqueue(wsConn *WebSocketConnection, data []byte) {
	select {
	case wsConn.send <- data:
	case <-wsConn.ctx.Done():
	default:
		ws.logger.Warn("send buffer full, closing connection", "conn", wsConn.ID)
		ws.closeConnection(wsConn)
	}
}

// closeConnection closes a WebSocket connection
func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeOnce.Do(func() {
		wsConn.cancel()

		ws.connectionsMutex.Lock()
		delete(ws.connections, wsConn.ID)
		ws.connectionsMutex.Unlock()

		ws.subscriptionManager.RemoveConnection(wsConn.ID)
		_ = wsConn.conn.Close()

		ws.logger.Debug("connection closed", "conn", wsConn.ID)
	})
}

// ConnectionCount returns the number of open connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connectionsMutex.RLock()
	defer ws.connectionsMutex.RUnlock()
	return len(ws.connections)
}

// Close drops every open connection. http.Server.Shutdown does not close
// hijacked connections.
func (ws *WebSocketServer) Close() {
	ws.connectionsMutex.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.connectionsMutex.RUnlock()

	for _, c := range conns {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		ws.closeConnection(c)
	}
}
