package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fieldvoice/fieldvoicego/internal/store"
)

// listQueue returns every offline-queue entry, oldest first.
func (r *Router) listQueue(w http.ResponseWriter, req *http.Request) {
	entries, err := r.store.QueueEntries()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// drainQueue kicks a drain pass immediately instead of waiting for the
// next interval. Returns the pass summary.
func (r *Router) drainQueue(w http.ResponseWriter, req *http.Request) {
	result := r.drainer.Drain(req.Context())
	respondJSON(w, http.StatusOK, result)
}

func queueEntryID(req *http.Request) (uint, bool) {
	raw := mux.Vars(req)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// retryQueueEntry re-attempts a single queue entry right now.
func (r *Router) retryQueueEntry(w http.ResponseWriter, req *http.Request) {
	id, ok := queueEntryID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid queue entry id")
		return
	}

	entry, err := r.store.QueueEntry(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "queue entry not found")
		return
	}

	draft, err := store.DraftFromEntry(entry)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "corrupt queue snapshot: "+err.Error())
		return
	}

	outcome := r.engine.SyncDraft(req.Context(), draft)
	if outcome.Success {
		if err := r.store.RemoveQueueEntry(id); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, outcome)
		return
	}

	if err := r.store.MarkQueueEntryFailed(id, outcome.Error); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusBadGateway, outcome)
}

// deleteQueueEntry discards a queued draft permanently.
func (r *Router) deleteQueueEntry(w http.ResponseWriter, req *http.Request) {
	id, ok := queueEntryID(req)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid queue entry id")
		return
	}
	if err := r.store.RemoveQueueEntry(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
