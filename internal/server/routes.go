package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/fundmix/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	if s.app.Metrics != nil {
		mux.Handle("/metrics", s.app.Metrics.Handler())
	}

	// Ingestion
	mux.Handle("/api/ingest", s.ingest.middleware(http.HandlerFunc(s.handleIngest)))
	mux.HandleFunc("/api/ingestion", s.handleLastIngestion)

	// Funds and breakdowns
	mux.HandleFunc("/api/funds/selected", s.handleSelectedFund)
	mux.HandleFunc("/api/funds/", s.routeFunds)
	mux.HandleFunc("/api/funds", s.handleFundList)
	mux.HandleFunc("/api/breakdowns", s.handleSelectedBreakdowns)
}

// routeFunds dispatches /api/funds/{fund}/... requests.
func (s *Server) routeFunds(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/funds/")
	if path == "" {
		s.handleFundList(w, r)
		return
	}

	if strings.HasSuffix(path, "/breakdowns") {
		fund := PathParam(r, "/api/funds/", "/breakdowns")
		if fund == "" {
			WriteError(w, http.StatusBadRequest, "Fund name is required")
			return
		}
		s.handleFundBreakdowns(w, r, fund)
		return
	}

	if strings.HasSuffix(path, "/report") {
		fund := PathParam(r, "/api/funds/", "/report")
		if fund == "" {
			WriteError(w, http.StatusBadRequest, "Fund name is required")
			return
		}
		s.handleFundReport(w, r, fund)
		return
	}

	WriteError(w, http.StatusNotFound, "Not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
