package api

import (
	"net/http"

	"github.com/kilianp07/citypredict/core/prediction"
)

func (h *handler) home(w http.ResponseWriter, _ *http.Request) {
	endpoints := map[string]string{}
	for _, d := range prediction.Domains() {
		endpoints[string(d)] = "/predict/" + string(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Smart City Resource Optimization API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

type domainHealth struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                             `json:"status"`
	Domains      map[prediction.Domain]domainHealth `json:"domains"`
	WaterVariant prediction.WaterVariant            `json:"water_variant,omitempty"`
}

// health answers 200 while at least one domain can serve predictions.
func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Domains: map[prediction.Domain]domainHealth{}}
	up := 0
	for _, d := range prediction.Domains() {
		if err := h.pred.Available(d); err != nil {
			resp.Domains[d] = domainHealth{Error: err.Error()}
			resp.Status = "degraded"
			continue
		}
		up++
		resp.Domains[d] = domainHealth{Available: true}
	}
	resp.WaterVariant = h.pred.WaterVariant()
	status := http.StatusOK
	if up == 0 {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
