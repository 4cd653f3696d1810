// Package rpc serves the token over JSON-RPC on HTTP and WebSocket.
//
// Requests use the {"method": "...", "params": [{...}]} envelope and every
// result carries "status": "success" or "error".
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/rpc/rpc_types"
)

// maxRequestBody bounds a single JSON-RPC request.
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry       *MethodRegistry
	services       Services
	timeout        time.Duration
	allowedOrigins []string
	logger         *slog.Logger
}

type Option func(*Server)

// WithTimeout bounds each method call.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithAllowedOrigins restricts CORS and WebSocket origins. Empty allows all.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new RPC server over services
func NewServer(services Services, opts ...Option) *Server {
	server := &Server{
		registry: NewMethodRegistry(),
		services: services,
		timeout:  30 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.logger = server.logger.With("component", "rpc")

	server.registerAllMethods()
	return server
}

// Methods lists the registered method names.
func (s *Server) Methods() []string {
	return s.registry.List()
}

// JsonRpcRequest is the request envelope.
type JsonRpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin(r))
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest serves parameterless reads, e.g. GET /rpc?command=token_info
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "token_info"
	}

	result, rpcErr := s.executeMethod(r.Context(), method, nil, getClientIP(r))
	s.writeResponse(w, map[string]interface{}{"command": method}, result, rpcErr)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(rpc_types.RpcJSON_RPC, "invalidRequest", "invalidRequest", "Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request JsonRpcRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing method field"))
		return
	}

	// params is an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.executeMethod(r.Context(), request.Method, params, getClientIP(r))

	var requestObj interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		reqMap["command"] = request.Method
		requestObj = reqMap
	}
	s.writeResponse(w, requestObj, result, rpcErr)
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(ctx context.Context, method string, params json.RawMessage, clientIP string) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, rpcErr := handler.Handle(&RpcContext{Context: ctx, ClientIP: clientIP}, params)
	if rpcErr != nil {
		s.logger.Debug("method failed", "method", method, "client", clientIP, "error", rpcErr.ErrorString, "elapsed", time.Since(start))
	} else {
		s.logger.Debug("method served", "method", method, "client", clientIP, "elapsed", time.Since(start))
	}
	return result, rpcErr
}

// writeResponse writes {"result": {...}} with status success or error.
// Errors carry error, error_code, error_message and the echoed request.
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
		response["result"] = resultObj
	} else if resultMap, ok := result.(map[string]interface{}); ok {
		resultMap["status"] = "success"
		response["result"] = resultMap
	} else {
		response["result"] = map[string]interface{}{
			"status": "success",
			"data":   result,
		}
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) corsOrigin(r *http.Request) string {
	if len(s.allowedOrigins) == 0 {
		return "*"
	}
	origin := r.Header.Get("Origin")
	if s.originAllowed(origin) {
		return origin
	}
	return s.allowedOrigins[0]
}

func (s *Server) originAllowed(origin string) bool {
	return len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, origin)
}

// Handler mounts the JSON-RPC endpoint on / and /rpc and, when ws is non-nil,
// the WebSocket endpoint on wsPath.
func (s *Server) Handler(ws *WebSocketServer, wsPath string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.Handle("/rpc", s)
	if ws != nil {
		mux.Handle(wsPath, ws)
	}
	return mux
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
