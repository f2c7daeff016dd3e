package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/wonny/conviction-radar/internal/api/handlers"
	"github.com/wonny/conviction-radar/pkg/database"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// HealthChecker is an optional dependency checked by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
// jobs가 nil이면 scheduler 엔드포인트 없음 (api --scheduler 미사용)
func NewRouter(scoreHandler *handlers.ScoreHandler, jobs *handlers.SchedulerHandler, db HealthChecker, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(db)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scoring endpoints
	api.HandleFunc("/score/{ticker}", scoreHandler.GetScore).Methods("GET")
	api.HandleFunc("/batch", scoreHandler.PostBatch).Methods("POST")

	// Scheduler endpoints
	if jobs != nil {
		api.HandleFunc("/scheduler/jobs", jobs.ListJobs).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/history", jobs.GetHistory).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/run", jobs.TriggerJob).Methods("POST")
	}

	// Streaming batch
	r.HandleFunc("/ws/batch", scoreHandler.StreamBatch).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return corsHandler().Handler(r)
}

// corsHandler allows browser dashboards to call the API
// credentials 미사용 → wildcard origin 허용
func corsHandler() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
}

// healthCheckHandler returns server health status
// db가 nil이면 DB 항목 생략
func healthCheckHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{
			"status":  "ok",
			"service": "conviction-radar-api",
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			health, err := db.HealthCheck(ctx)
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
			body["database"] = health
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// websocket upgrade는 Hijacker가 필요 → 래핑하지 않음
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				log.WithFields(map[string]interface{}{
					"method":   r.Method,
					"path":     r.URL.Path,
					"duration": time.Since(start),
				}).Debug("Websocket session closed")
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
