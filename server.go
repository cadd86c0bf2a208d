package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"i4.energy/across/oscgw/modem"
	"i4.energy/across/oscgw/osc"
	"i4.energy/across/oscgw/session"
)

// Server handles incoming HTTP requests for interacting with the
// configured session
type Server struct {
	Logger   *slog.Logger
	Session  *session.Session
	Network  session.Network
	Endpoint session.Endpoint

	router chi.Router
}

// NewServer builds the routes of a Server.
func NewServer(logger *slog.Logger, s *session.Session, network session.Network, endpoint session.Endpoint) *Server {
	srv := &Server{
		Logger:   logger,
		Session:  s,
		Network:  network,
		Endpoint: endpoint,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(srv.logRequests)
	r.Use(middleware.Recoverer)

	r.Post("/osc", srv.handleOSC)
	r.Get("/status", srv.handleStatus)
	r.Post("/reconnect", srv.handleReconnect)

	srv.router = r
	return srv
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// statusCode maps a session error to the HTTP status reported for it.
func statusCode(err error) int {
	switch {
	case errors.Is(err, osc.ErrEmptyAddress), errors.Is(err, osc.ErrAddressPrefix), errors.Is(err, osc.ErrEmbeddedNUL):
		return http.StatusBadRequest
	case errors.Is(err, modem.ErrPreconditionNotMet):
		return http.StatusConflict
	case errors.Is(err, modem.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, modem.ErrRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// jsonArgs converts decoded JSON values to message arguments. Strings use
// the osc.ParseArg notation; numbers are Int32 when integral.
func jsonArgs(values []any) ([]osc.Arg, error) {
	args := make([]osc.Arg, 0, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case string:
			a, err := osc.ParseArg(v)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			args = append(args, a)
		case float64:
			if v == float64(int32(v)) {
				args = append(args, osc.Int32(v))
			} else {
				args = append(args, osc.Float32(v))
			}
		default:
			return nil, fmt.Errorf("argument %d: unsupported JSON type %T", i, v)
		}
	}
	return args, nil
}

// handleOSC processes incoming HTTP POST requests to send OSC messages
func (s *Server) handleOSC(w http.ResponseWriter, r *http.Request) {
	type OSCRequest struct {
		Address string `json:"address"`
		Args    []any  `json:"args"`
	}

	var req OSCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	args, err := jsonArgs(req.Args)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Session.Send(r.Context(), req.Address, args...); err != nil {
		code := statusCode(err)
		if code >= http.StatusInternalServerError {
			s.Logger.Error("Failed to send OSC message", "error", err, "address", req.Address)
		}
		s.sendError(w, err.Error(), code)
		return
	}

	s.Logger.Info("OSC message sent", "address", req.Address, "args", len(args))
	w.WriteHeader(http.StatusOK)
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State              string `json:"state"`
	Connected          bool   `json:"connected"`
	LastSendSuccessful bool   `json:"last_send_successful"`
	LastError          string `json:"last_error,omitempty"`
	Endpoint           string `json:"endpoint"`
}

func (s *Server) status() StatusResponse {
	status := s.Session.Status()
	resp := StatusResponse{
		State:              status.State.String(),
		Connected:          status.State == modem.StateTransportOpen,
		LastSendSuccessful: status.LastSendSuccessful,
		Endpoint:           s.Endpoint.String(),
	}
	if status.LastStepError != nil {
		resp.LastError = status.LastStepError.Error()
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, s.status(), http.StatusOK)
}

// handleReconnect runs the whole connection sequence again
func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Connect(r.Context(), s.Network, s.Endpoint); err != nil {
		s.Logger.Error("Reconnect failed", "error", err)
		s.sendError(w, err.Error(), statusCode(err))
		return
	}
	s.sendJSON(w, s.status(), http.StatusOK)
}
