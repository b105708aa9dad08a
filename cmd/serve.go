package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/pipeline"
	"github.com/tendersight/tender-cli/internal/store"
)

var servePort int

// summarizer is what the HTTP layer needs from the pipeline.
type summarizer interface {
	Run(ctx context.Context, docs []model.Document) (*pipeline.Envelope, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP summarization API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		router := newRouter(initPipeline(), st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter assembles the API routes.
func newRouter(p summarizer, st store.Store) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/tenders/summarize", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Documents []struct {
				Name string `json:"name"`
				Text string `json:"text"`
			} `json:"documents"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(body.Documents) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "documents is required"})
			return
		}

		docs := make([]model.Document, len(body.Documents))
		for i, d := range body.Documents {
			name := d.Name
			if name == "" {
				name = fmt.Sprintf("document-%d", i+1)
			}
			docs[i] = model.Document{Name: name, Text: d.Text}
		}

		env, err := p.Run(req.Context(), docs)
		if err != nil {
			zap.L().Error("serve: summarization failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "summarization failed"})
			return
		}

		if run, saveErr := st.SaveRun(req.Context(), env.Metadata, env.ToMap()); saveErr != nil {
			zap.L().Warn("serve: failed to save run", zap.Error(saveErr))
		} else {
			w.Header().Set("X-Run-ID", run.ID)
		}

		writeJSON(w, http.StatusOK, env.ToMap())
	})

	r.Get("/v1/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), 50)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		if runs == nil {
			runs = []store.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/v1/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
