// Package handlers exposes the field-reporting HTTP API consumed by
// the inspector-facing UI.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fieldvoice/fieldvoicego/internal/buildinfo"
	"github.com/fieldvoice/fieldvoicego/internal/config"
	"github.com/fieldvoice/fieldvoicego/internal/middleware"
	"github.com/fieldvoice/fieldvoicego/internal/pdf"
	"github.com/fieldvoice/fieldvoicego/internal/reports"
	"github.com/fieldvoice/fieldvoicego/internal/rules"
	"github.com/fieldvoice/fieldvoicego/internal/store"
	syncpkg "github.com/fieldvoice/fieldvoicego/internal/sync"
	"github.com/fieldvoice/fieldvoicego/internal/websocket"
)

// Router wraps the mux router and the services behind the API.
type Router struct {
	*mux.Router

	cfg     *config.Config
	store   *store.Store
	saver   *store.DebouncedSaver
	repo    *reports.Repository
	index   *reports.SummaryIndex
	engine  *syncpkg.Engine
	drainer *syncpkg.Drainer
	monitor *syncpkg.ConnectionMonitor
	hub     *websocket.Hub
	pdfgen  *pdf.Generator
}

// Deps bundles everything the router needs.
type Deps struct {
	Config  *config.Config
	Store   *store.Store
	Saver   *store.DebouncedSaver
	Repo    *reports.Repository
	Index   *reports.SummaryIndex
	Engine  *syncpkg.Engine
	Drainer *syncpkg.Drainer
	Monitor *syncpkg.ConnectionMonitor
	Hub     *websocket.Hub
	PDFGen  *pdf.Generator
}

// NewRouter creates the HTTP router with all routes.
func NewRouter(deps Deps) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		cfg:     deps.Config,
		store:   deps.Store,
		saver:   deps.Saver,
		repo:    deps.Repo,
		index:   deps.Index,
		engine:  deps.Engine,
		drainer: deps.Drainer,
		monitor: deps.Monitor,
		hub:     deps.Hub,
		pdfgen:  deps.PDFGen,
	}

	r.Use(mux.MiddlewareFunc(middleware.Logging))
	r.Use(mux.MiddlewareFunc(middleware.CaseInsensitive))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Status and project selection
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")
	api.HandleFunc("/projects", r.listProjects).Methods("GET")
	api.HandleFunc("/projects/active", r.setActiveProject).Methods("PUT")

	// Draft lifecycle
	drafts := r.PathPrefix("/api/drafts").Subrouter()
	drafts.HandleFunc("/current", r.getDraft).Methods("GET")
	drafts.HandleFunc("/current", r.saveDraft).Methods("PUT")
	drafts.HandleFunc("/current", r.discardDraft).Methods("DELETE")
	drafts.HandleFunc("/finish", r.finishDraft).Methods("POST")

	// Offline queue
	queue := r.PathPrefix("/api/queue").Subrouter()
	queue.HandleFunc("", r.listQueue).Methods("GET")
	queue.HandleFunc("/sync", r.drainQueue).Methods("POST")
	queue.HandleFunc("/{id}/retry", r.retryQueueEntry).Methods("POST")
	queue.HandleFunc("/{id}", r.deleteQueueEntry).Methods("DELETE")

	// Canonical reports
	rep := r.PathPrefix("/api/reports").Subrouter()
	rep.HandleFunc("/{id}", r.getReport).Methods("GET")
	rep.HandleFunc("/{id}/submit", r.submitReport).Methods("POST")
	rep.HandleFunc("/{id}/pdf", r.reportPDF).Methods("GET")

	// Live status stream
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(r.hub, w, req)
	})

	return r
}

// healthCheck returns the health status of the node. Also the target
// of the connectivity probe when two nodes point at each other.
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "local",
	})
}

// getStatus returns connectivity and queue state for the dashboard.
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"online":          r.monitor.IsOnline(),
		"queueDepth":      r.store.QueueDepth(),
		"activeProjectId": r.store.ActiveProjectID(),
		"inspector":       r.cfg.InspectorName,
		"version":         buildinfo.Version,
		"commit":          buildinfo.CommitHash,
		"startedAt":       buildinfo.StartTime,
	})
}

// projectListing is one project with its start eligibility attached.
type projectListing struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Location string         `json:"location,omitempty"`
	Active   bool           `json:"active"`
	Decision rules.Decision `json:"decision"`
	HasDraft bool           `json:"hasDraft"`
}

// listProjects returns active projects with today's eligibility
// decision per project.
func (r *Router) listProjects(w http.ResponseWriter, req *http.Request) {
	today := req.URL.Query().Get("date")
	if today == "" {
		today = todayDate()
	}

	projects, err := r.repo.Projects(req.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load projects: "+err.Error())
		return
	}

	summaries, err := r.index.Summaries(req.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load report summaries: "+err.Error())
		return
	}

	activeID := r.store.ActiveProjectID()
	listings := make([]projectListing, 0, len(projects))
	for _, p := range projects {
		draft := r.store.GetDraft(p.ID, today)
		listings = append(listings, projectListing{
			ID:       p.ID,
			Name:     p.Name,
			Location: p.Location,
			Active:   p.ID == activeID,
			Decision: rules.CanStartNewReport(p.ID, today, summaries),
			HasDraft: draft != nil,
		})
	}

	respondJSON(w, http.StatusOK, listings)
}

// setActiveProject records which project the inspector is working on.
func (r *Router) setActiveProject(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ProjectID string `json:"projectId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ProjectID == "" {
		respondError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	project, err := r.repo.Project(req.Context(), body.ProjectID)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "unknown project: "+body.ProjectID)
		return
	}

	if err := r.store.SetActiveProjectID(body.ProjectID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"activeProjectId": body.ProjectID})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
