// Package api exposes the validation pipeline over HTTP for builder UIs:
// skill and solution validation, document patching and JSON Schema export.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/skillsmith/skillsmith/pkg/defaults"
	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/patch"
	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/skill"
	"github.com/skillsmith/skillsmith/pkg/solution"
	"github.com/skillsmith/skillsmith/pkg/validation"
	"github.com/skillsmith/skillsmith/pkg/version"
)

// Server serves the validation API.
type Server struct {
	router *mux.Router
	config *ServerConfig
	server *http.Server
}

// ServerConfig holds the configuration for the API server
type ServerConfig struct {
	Host string
	Port int
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// NewServer creates a new API server
func NewServer(config *ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router: mux.NewRouter(),
		config: config,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	// OPTIONS is routed so the CORS middleware can answer preflight requests.
	api.HandleFunc("/validate/skill", s.handleValidateSkill).Methods("POST", "OPTIONS")
	api.HandleFunc("/validate/solution", s.handleValidateSolution).Methods("POST", "OPTIONS")
	api.HandleFunc("/patch/skill", s.handlePatchSkill).Methods("POST", "OPTIONS")
	api.HandleFunc("/schema/{kind}", s.handleGetSchema).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.recoverMiddleware)
}

// handleValidateSkill handles POST /api/validate/skill. The body is a raw
// skill document; ?quick=true runs the schema stage only.
func (s *Server) handleValidateSkill(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}

	doc = defaults.EnsureSkillDefaults(doc)

	var (
		report *validation.Report
		err    error
	)
	if r.URL.Query().Get("quick") == "true" {
		report, err = validation.QuickValidate(doc)
	} else {
		report, err = validation.Validate(doc)
	}
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "failed to validate skill", err)
		return
	}

	s.writeJSONResponse(w, report)
}

// solutionRequest is the envelope form of the solution validation body. A bare
// solution document is accepted as well.
type solutionRequest struct {
	Solution map[string]any    `json:"solution"`
	Context  *solution.Context `json:"context"`
}

// handleValidateSolution handles POST /api/validate/solution. The body is
// either a solution document or {"solution": ..., "context": ...} where the
// context carries full skill bodies and connector material for the extended
// binding checks.
func (s *Server) handleValidateSolution(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}

	var ctx *solution.Context
	if inner, present := doc["solution"].(map[string]any); present {
		req := solutionRequest{}
		if raw, err := json.Marshal(doc); err == nil {
			_ = json.Unmarshal(raw, &req)
		}
		doc = inner
		ctx = req.Context
	}

	doc = defaults.EnsureSolutionDefaults(doc)

	report, err := validation.ValidateSolution(doc, ctx)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "failed to validate solution", err)
		return
	}

	s.writeJSONResponse(w, report)
}

// patchRequest is the body of POST /api/patch/skill.
type patchRequest struct {
	Document map[string]any `json:"document"`
	Update   map[string]any `json:"update"`
}

// patchResponse carries the patched document with its fresh validation report.
type patchResponse struct {
	Document map[string]any     `json:"document"`
	Report   *validation.Report `json:"report"`
}

// handlePatchSkill handles POST /api/patch/skill: apply a builder update to a
// draft document and return the result with a full re-validation.
func (s *Server) handlePatchSkill(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Document == nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "document is required", nil)
		return
	}

	doc := defaults.EnsureSkillDefaults(req.Document)
	if err := patch.Apply(doc, req.Update); err != nil {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "failed to apply update", err)
		return
	}

	report, err := validation.Validate(doc)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "failed to validate patched skill", err)
		return
	}

	s.writeJSONResponse(w, patchResponse{Document: doc, Report: report})
}

// handleGetSchema handles GET /api/schema/{kind} for kind "skill" or
// "solution", returning the JSON Schema of the typed document model.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	reflector := &jsonschema.Reflector{ExpandedStruct: true}

	var schema *jsonschema.Schema
	switch kind := mux.Vars(r)["kind"]; kind {
	case "skill":
		schema = reflector.Reflect(&skill.Skill{})
	case "solution":
		schema = reflector.Reflect(&solution.Solution{})
	default:
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("unknown schema kind %q", kind), nil)
		return
	}

	s.writeJSONResponse(w, schema)
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSONResponse(w, map[string]any{
		"status":  "ok",
		"version": version.Get().Version,
	})
}

// decodeDocument reads the request body as a JSON object.
func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}
	if doc == nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "request body must be a JSON object", nil)
		return nil, false
	}
	return doc, true
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware converts handler panics into 500 responses.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.G(r.Context()).WithField("panic", rec).Error("handler panic")
				s.writeErrorResponse(w, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes an error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		logger.G(context.TODO()).WithError(err).Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":   message,
		"status":  statusCode,
		"success": false,
	}
	if err != nil {
		response["detail"] = err.Error()
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode error response")
	}
}

// Handler returns the configured router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	presenter.Info(fmt.Sprintf("Starting validation API on http://%s", address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("API server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop shuts the server down immediately.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}
