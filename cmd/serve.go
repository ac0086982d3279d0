package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dewart-reps/mileage-cli/internal/mapping"
	"github.com/dewart-reps/mileage-cli/internal/model"
	"github.com/dewart-reps/mileage-cli/internal/resolver"
	"github.com/dewart-reps/mileage-cli/internal/unresolved"
)

var servePort int

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for GUI frontends",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Suggestions need a caller to answer; the API has none, so
		// they are declined and surface via the unresolved endpoint.
		env, err := initEnv(ctx, cfg.Lookup.Enabled, resolver.DeclineAll())
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(env),
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return runServer(ctx, srv)
	},
}

// runServer serves until ctx is canceled, then drains in-flight requests
// on a fresh timeout context. The signal context is already canceled at
// shutdown time, so it cannot be the shutdown deadline.
func runServer(ctx context.Context, srv *http.Server) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return eris.Wrap(<-done, "server shutdown")
}

func buildRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Trips []model.TripSegment `json:"trips"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(body.Trips) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "trips is required"})
			return
		}

		result, err := env.Pipeline.Run(req.Context(), body.Trips)
		if err != nil {
			zap.L().Error("api analyze failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/mappings", func(w http.ResponseWriter, req *http.Request) {
		out := make(map[string]mapping.Entry, env.Store.Len())
		for _, addr := range env.Store.Addresses() {
			entry, _ := env.Store.Get(addr)
			out[addr] = entry
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Put("/api/mappings", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Address  string `json:"address"`
			Name     string `json:"name"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Address == "" || body.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address and name are required"})
			return
		}

		env.Store.Set(body.Address, mapping.Entry{
			Name:     body.Name,
			Category: body.Category,
			Source:   mapping.SourceManual,
		})
		if err := env.Store.Flush(req.Context()); err != nil {
			zap.L().Error("mapping flush failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	})

	r.Get("/api/unresolved", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, unresolved.Analyze(env.Store))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
