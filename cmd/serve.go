package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
	"github.com/justlist/facility-finder/internal/pipeline"
	"github.com/justlist/facility-finder/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Exposes search and run history over HTTP. POST /api/search runs the full pipeline synchronously and returns the enriched leads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(p, st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// runner is the slice of the pipeline the HTTP layer needs.
type runner interface {
	Run(ctx context.Context, query model.SearchQuery) (*pipeline.Result, error)
}

// newRouter builds the API routes over a pipeline runner and a store.
func newRouter(p runner, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", handleSearch(p))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/{id}", handleGetRun(st))
		r.Get("/runs/{id}/leads", handleListLeads(st))
		r.Delete("/runs/{id}", handleDeleteRun(st))
	})

	return r
}

func handleSearch(p runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query model.SearchQuery
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		query = query.Sanitize()
		if err := query.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := p.Run(r.Context(), query)
		if err != nil {
			zap.L().Error("api search failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = n
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("api list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}

		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			zap.L().Error("api get run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get run failed")
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

func handleListLeads(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "id")
		if _, err := st.GetRun(r.Context(), runID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			zap.L().Error("api list leads failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list leads failed")
			return
		}

		leads, err := st.ListLeads(r.Context(), runID)
		if err != nil {
			zap.L().Error("api list leads failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list leads failed")
			return
		}

		writeJSON(w, http.StatusOK, leads)
	}
}

func handleDeleteRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			zap.L().Error("api delete run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "delete run failed")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
