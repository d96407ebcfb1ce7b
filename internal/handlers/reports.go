package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// getReport returns one canonical report row.
func (r *Router) getReport(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	report, err := r.repo.Get(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// submitReport marks a refined report as submitted. Only refined
// reports can be submitted; anything else is a conflict.
func (r *Router) submitReport(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	if err := r.repo.MarkSubmitted(req.Context(), id); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	r.index.Invalidate()

	report, err := r.repo.Get(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// reportPDF renders the refined report as a PDF and records the link.
func (r *Router) reportPDF(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	report, err := r.repo.Get(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}

	// Master data only enriches the header; the PDF renders without it.
	project, _ := r.repo.Project(req.Context(), report.ProjectID)

	data, err := r.pdfgen.Generate(report, project, r.cfg.InspectorName)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pdfPath := fmt.Sprintf("/api/reports/%s/pdf", report.ID)
	if report.PDFUrl != pdfPath {
		if err := r.repo.SetPDFUrl(req.Context(), report.ID, pdfPath); err == nil {
			r.index.Invalidate()
		}
	}

	filename := fmt.Sprintf("report_%s_%s.pdf", report.ProjectID, strings.ReplaceAll(report.ReportDate, "-", ""))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
