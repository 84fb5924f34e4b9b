// Package rpc serves the daemon's JSON-RPC 2.0 API over HTTP.
//
// Every call is a POST to the root path. Callers prove an identity by
// signing the raw request body with their ed25519 key and sending the
// key and signature in headers; requests with no identity headers run
// anonymously and only reach the handful of public methods.
package rpc

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/psstapp/psst-server/internal/auth"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/service"
)

// maxBodySize bounds request bodies. Posts are text and invites are
// 133 bytes, so a megabyte is generous.
const maxBodySize = 1 << 20

// Server holds dependencies for the JSON-RPC endpoint.
type Server struct {
	spaces  *service.SpaceService
	forum   *service.ForumService
	subs    *service.SubscriptionService
	secrets *service.SecretService
	router  *chi.Mux
	methods map[string]methodFunc
	logger  *slog.Logger
}

// NewServer creates a new RPC server with all methods registered.
func NewServer(
	spaces *service.SpaceService,
	forum *service.ForumService,
	subs *service.SubscriptionService,
	secrets *service.SecretService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		spaces:  spaces,
		forum:   forum,
		subs:    subs,
		secrets: secrets,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.registerMethods()
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", auth.PublicKeyHeader, auth.SignatureHeader},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Post("/", s.handleRPC)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.MarshalWrite(w, map[string]string{"status": "ok"}); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}

// handleRPC authenticates the raw body, then dispatches one call or a
// batch of calls.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeResponses(w, []Response{errorResponse(nil, codeInvalidRequest, "request body unreadable")}, false)
		return
	}

	caller, err := auth.Authenticate(body, r.Header.Get(auth.PublicKeyHeader), r.Header.Get(auth.SignatureHeader))
	if err != nil {
		s.writeResponses(w, []Response{s.errorFor(nil, err)}, false)
		return
	}

	requests, batch, err := parseBody(body)
	if err != nil {
		s.writeResponses(w, []Response{errorResponse(nil, codeParseError, "parse error")}, false)
		return
	}
	if len(requests) == 0 {
		s.writeResponses(w, []Response{errorResponse(nil, codeInvalidRequest, "empty batch")}, false)
		return
	}

	responses := make([]Response, 0, len(requests))
	for i := range requests {
		resp, notification := s.dispatch(r, caller, &requests[i])
		if !notification {
			responses = append(responses, resp)
		}
	}

	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeResponses(w, responses, batch)
}

// parseBody decodes either a single request or a batch.
func parseBody(body []byte) ([]Request, bool, error) {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			var requests []Request
			if err := json.Unmarshal(body, &requests); err != nil {
				return nil, true, err
			}
			return requests, true, nil
		default:
			var req Request
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, false, err
			}
			return []Request{req}, false, nil
		}
	}
	return nil, false, io.ErrUnexpectedEOF
}

// dispatch runs one request. The second return is true for notifications,
// which produce no response.
func (s *Server) dispatch(r *http.Request, caller auth.Identity, req *Request) (Response, bool) {
	if req.JSONRPC != Version || req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, "invalid request"), req.IsNotification()
	}

	method, ok := s.methods[req.Method]
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "method not found"), req.IsNotification()
	}

	result, err := method(r.Context(), caller, req.Params)
	if err != nil {
		return s.errorFor(req.ID, err), req.IsNotification()
	}
	if result == nil {
		result = jsontext.Value("null")
	}
	return resultResponse(req.ID, result), req.IsNotification()
}

// errorFor maps an error onto the wire. Domain errors keep their code
// and message; anything else is reported as a generic internal error.
func (s *Server) errorFor(id jsontext.Value, err error) Response {
	if domainerrors.Is(err, errInvalidParams) {
		return errorResponse(id, codeInvalidParams, err.Error())
	}
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		if domainErr.Code == domainerrors.CodeInternal {
			s.logger.Error("rpc call failed", "error", err)
		}
		return errorResponse(id, domainErr.RPCCode(), domainErr.Message)
	}
	s.logger.Error("rpc call failed", "error", err)
	return errorResponse(id, codeInternalError, "internal error")
}

func (s *Server) writeResponses(w http.ResponseWriter, responses []Response, batch bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	var err error
	if batch {
		err = json.MarshalWrite(w, responses)
	} else {
		err = json.MarshalWrite(w, responses[0])
	}
	if err != nil {
		s.logger.Error("failed to encode rpc response", "error", err)
	}
}
