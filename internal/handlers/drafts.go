package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fieldvoice/fieldvoicego/internal/models"
)

// todayDate returns today's report date in the local timezone. Field
// work keys on the inspector's calendar day, not UTC.
func todayDate() string {
	return time.Now().Format("2006-01-02")
}

// draftIdentity pulls the (project, date) identity from the query,
// falling back to the active project and today.
func (r *Router) draftIdentity(req *http.Request) (projectID, reportDate string) {
	projectID = req.URL.Query().Get("projectId")
	if projectID == "" {
		projectID = r.store.ActiveProjectID()
	}
	reportDate = req.URL.Query().Get("date")
	if reportDate == "" {
		reportDate = todayDate()
	}
	return projectID, reportDate
}

// getDraft returns the current draft for a (project, date) identity,
// or 404 when none exists. A stored draft whose identity does not
// match is treated as absent, never returned.
func (r *Router) getDraft(w http.ResponseWriter, req *http.Request) {
	projectID, reportDate := r.draftIdentity(req)
	if projectID == "" {
		respondError(w, http.StatusBadRequest, "no project selected")
		return
	}

	draft := r.store.GetDraft(projectID, reportDate)
	if draft == nil {
		respondError(w, http.StatusNotFound, "no draft for this project and date")
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// saveDraft persists the draft through the debounced saver. Rapid
// keystrokes coalesce into one write; the response acknowledges
// acceptance, not durability.
func (r *Router) saveDraft(w http.ResponseWriter, req *http.Request) {
	var draft models.Draft
	if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "malformed draft: "+err.Error())
		return
	}
	if draft.ProjectID == "" || draft.ReportDate == "" {
		respondError(w, http.StatusBadRequest, "projectId and reportDate are required")
		return
	}
	if !draft.CaptureMode.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown capture mode")
		return
	}
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}

	r.saver.Save(&draft)
	respondJSON(w, http.StatusAccepted, map[string]string{"key": draft.Key()})
}

// discardDraft deletes the draft for a (project, date) identity.
// Deleting an absent draft is a no-op.
func (r *Router) discardDraft(w http.ResponseWriter, req *http.Request) {
	projectID, reportDate := r.draftIdentity(req)
	if projectID == "" {
		respondError(w, http.StatusBadRequest, "no project selected")
		return
	}

	r.store.DeleteDraft(models.DraftKey(projectID, reportDate))
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// finishDraft completes a draft: flush any pending debounced save,
// then sync or queue it. The outcome is returned as data; validation
// failures come back 422 and leave nothing queued.
func (r *Router) finishDraft(w http.ResponseWriter, req *http.Request) {
	var draft models.Draft
	if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "malformed draft: "+err.Error())
		return
	}

	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	r.saver.Flush(&draft)

	outcome := r.engine.Finish(req.Context(), &draft)
	status := http.StatusOK
	if !outcome.Success && !outcome.Queued {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, outcome)
}
