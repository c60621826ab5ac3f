package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatherhall/address-engine/pkg/address"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolution HTTP server",
	Long:  "Serves the console's address-entry surfaces over HTTP: selection resolution for autocomplete pickers and coordinate resolution for map clicks.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		provider, cleanup, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(provider, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the resolution API. Handlers are stateless and construct
// one Resolver per request: staleness domains belong to the UI call sites,
// and two browser tabs must never cancel each other through a shared server
// counter.
func newRouter(provider address.Provider, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/resolve", func(r chi.Router) {
		r.Post("/selection", handleResolveSelection(provider))
		r.Post("/coordinates", handleResolveCoordinates(provider))
	})

	return r
}

func handleResolveSelection(provider address.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlaceID     string `json:"place_id"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
		if req.PlaceID == "" {
			writeError(w, http.StatusBadRequest, "place_id is required", "")
			return
		}

		resolved, err := address.NewResolver(provider).ResolveFromSelection(r.Context(), address.Prediction{
			PlaceID:     req.PlaceID,
			Description: req.Description,
		})
		if err != nil {
			writeResolutionError(w, "selection", err)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	}
}

func handleResolveCoordinates(provider address.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Pointer fields distinguish an omitted coordinate from a true zero;
		// (0, 0) is a valid point in the Gulf of Guinea.
		var req struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "")
			return
		}
		if req.Lat == nil || req.Lng == nil {
			writeError(w, http.StatusBadRequest, "lat and lng are required", "")
			return
		}

		resolved, err := address.NewResolver(provider).ResolveFromCoordinates(r.Context(), address.LatLng{
			Lat: *req.Lat,
			Lng: *req.Lng,
		})
		if err != nil {
			writeResolutionError(w, "coordinates", err)
			return
		}
		writeJSON(w, http.StatusOK, resolved)
	}
}

// writeResolutionError maps the engine's error taxonomy onto HTTP statuses:
// invalid input 400, unknown place 404, exhausted quota 503, any other
// provider failure 502.
func writeResolutionError(w http.ResponseWriter, flow string, err error) {
	reason := address.FailReason(err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, address.ErrInvalidCoordinates):
		status = http.StatusBadRequest
	case reason == address.ReasonNotFound:
		status = http.StatusNotFound
	case reason == address.ReasonQuota:
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		zap.L().Error("resolution failed",
			zap.String("flow", flow),
			zap.String("reason", reason),
			zap.String("request_id", w.Header().Get("X-Request-ID")),
			zap.Error(err),
		)
	}

	msg := "resolution failed"
	if status == http.StatusBadRequest {
		msg = "invalid coordinates"
	}
	writeError(w, status, msg, reason)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	body := map[string]string{"error": msg}
	if reason != "" {
		body["reason"] = reason
	}
	writeJSON(w, status, body)
}

// requestID tags every request with a UUID, honoring one supplied by the
// console's fetch layer so browser-side traces line up with server logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", ww.Header().Get("X-Request-ID")),
		)
	})
}
