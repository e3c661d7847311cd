// Package depothttp exposes a container's registrations over HTTP for
// debugging. Mount it on an internal listener only: it can drop cached
// instances.
package depothttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xraph/depot"
)

// Handler serves the debug routes of one container.
type Handler struct {
	container *depot.Container
	logger    *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler returns the debug routes for c:
//
//	GET  /definitions   installed keys as JSON (?format=yaml for YAML)
//	GET  /dump          the plain text dump
//	POST /release       drop cached instances (?scope=, ?name=, or all)
func NewHandler(c *depot.Container, opts ...Option) http.Handler {
	h := &Handler{
		container: c,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)

	router.Get("/definitions", h.definitions)
	router.Get("/dump", h.dump)
	router.Post("/release", h.release)

	return router
}

// definitions lists the installed keys, optionally filtered by scope and name.
func (h *Handler) definitions(w http.ResponseWriter, req *http.Request) {
	infos := depot.Query(h.container, depot.DefinitionQuery{
		Scope: req.URL.Query().Get("scope"),
		Name:  req.URL.Query().Get("name"),
		Kind:  req.URL.Query().Get("kind"),
	})
	if infos == nil {
		infos = []depot.DefinitionInfo{}
	}

	switch req.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(infos); err != nil {
			h.logger.Error("encode definitions", zap.Error(err))
		}
	case "yaml":
		out, err := yaml.Marshal(infos)
		if err != nil {
			h.logger.Error("encode definitions", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}

func (h *Handler) dump(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.container.Dump()))
}

// release drops cached instances by scope, by name, or all of them.
func (h *Handler) release(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	switch {
	case query.Has("scope"):
		scope, err := depot.ScopeByName(query.Get("scope"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.container.Release(scope)
		h.logger.Info("released scope", zap.Stringer("scope", scope))
	case query.Has("name"):
		h.container.ReleaseName(query.Get("name"))
		h.logger.Info("released name", zap.String("name", query.Get("name")))
	default:
		h.container.ReleaseAll()
		h.logger.Info("released all")
	}

	w.WriteHeader(http.StatusNoContent)
}
