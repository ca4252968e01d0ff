package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/stats"
	"github.com/kilianp07/citypredict/core/store"
	"github.com/kilianp07/citypredict/pkg/export"
	"github.com/kilianp07/citypredict/pkg/report"
)

// DefaultLimit caps /api/predictions when no limit is given.
const DefaultLimit = 100

// now is replaced in tests.
var now = time.Now

// moduleFilter maps an unknown or empty module to "all domains".
func moduleFilter(r *http.Request) prediction.Domain {
	d, err := prediction.ParseDomain(r.URL.Query().Get("module"))
	if err != nil {
		return ""
	}
	return d
}

func (h *handler) predictions(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", s))
			return
		}
		limit = n
	}
	recs, err := h.store.Query(r.Context(), store.Query{Module: moduleFilter(r), Limit: limit})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": recs})
}

func (h *handler) all(r *http.Request) ([]store.Record, error) {
	return h.store.Query(r.Context(), store.Query{})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	recs, err := h.all(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(recs))
}

func (h *handler) generatePDF(w http.ResponseWriter, r *http.Request) {
	recs, err := h.all(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	at := now()
	var buf bytes.Buffer
	if err := report.Render(&buf, stats.Compute(recs), recs, at); err != nil {
		h.log.Errorf("render report: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating PDF: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(at)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := h.store.Query(r.Context(), store.Query{Module: moduleFilter(r)})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, recs); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "predictions."+string(format)))
	_, _ = buf.WriteTo(w)
}
