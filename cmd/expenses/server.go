package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sebuszqo/ExpenseTracker/internal/auth"
	"github.com/sebuszqo/ExpenseTracker/internal/expense/interfaces"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"github.com/sebuszqo/ExpenseTracker/internal/metrics"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := metrics.NewStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.Status),
			zap.Duration("latency", time.Since(start)))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("JSON encoding error", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusNotFound, Response{Message: "Path not found"})
}

type healthChecker func(ctx context.Context) map[string]string

type Server struct {
	router         *http.ServeMux
	expenseHandler *interfaces.ExpenseHandler
	jwtManager     auth.JWTManagerInterface
	health         healthChecker
	serveMetrics   bool
}

// NewServer wires the expense routes. When serveMetrics is set /metrics is
// exposed on the same router.
func NewServer(expenseHandler *interfaces.ExpenseHandler, jwtManager auth.JWTManagerInterface, health healthChecker, serveMetrics bool) *Server {
	s := &Server{
		router:         http.NewServeMux(),
		expenseHandler: expenseHandler,
		jwtManager:     jwtManager,
		health:         health,
		serveMetrics:   serveMetrics,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health(r.Context())
	if stats["status"] != "up" {
		logger.Error("readiness check failed", zap.String("error", stats["error"]))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) RegisterRoutes() {
	protected := auth.JWTAccessTokenMiddleware(s.jwtManager)
	h := s.expenseHandler

	router := http.NewServeMux()

	// Public routes
	router.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	if s.serveMetrics {
		router.Handle("GET /metrics", metrics.Handler())
	}

	// Protected routes (using JWT Access Token Middleware)
	router.Handle("GET /api/expenses", protected(http.HandlerFunc(h.GetExpenses)))
	router.Handle("POST /api/expenses", protected(http.HandlerFunc(h.CreateExpense)))
	router.Handle("PUT /api/expenses/{id}",
		protected(h.ValidateExpensePathParamsMiddleware(http.HandlerFunc(h.UpdateExpense), "id")))
	router.Handle("DELETE /api/expenses/{id}",
		protected(h.ValidateExpensePathParamsMiddleware(http.HandlerFunc(h.DeleteExpense), "id")))
	router.Handle("PUT /api/expenses/category/{oldCategory}",
		protected(http.HandlerFunc(h.RenameCategory)))

	router.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = router
}

// Handler returns the router wrapped in request logging and metrics.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(metrics.Middleware(s.router))
}
