package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/bobmcallan/fundmix/internal/models"
	"github.com/bobmcallan/fundmix/internal/services/breakdown"
	"github.com/bobmcallan/fundmix/internal/services/report"
)

// Error codes returned by the ingest endpoint.
const (
	codeIngestionFormat     = "ingestion_format_error"
	codeIngestionSuperseded = "ingestion_superseded"
	codeUploadTooLarge      = "upload_too_large"
)

// fundListResponse is returned by GET /api/funds.
type fundListResponse struct {
	Funds    []string `json:"funds"`
	Selected string   `json:"selected"`
}

// selectedFundRequest is the PUT /api/funds/selected body.
type selectedFundRequest struct {
	Fund string `json:"fund"`
}

// breakdownsResponse carries one fund's charts both keyed and ordered.
type breakdownsResponse struct {
	Fund       string                         `json:"fund"`
	Breakdowns map[string][]models.ChartEntry `json:"breakdowns"`
	Charts     []models.Chart                 `json:"charts"`
}

// handleIngest handles POST /api/ingest.
// The body is either raw CSV or a multipart form with the CSV in field "file".
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	limit := s.app.Config.Ingest.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	source, data, err := readUpload(r, limit)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorWithCode(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit), codeUploadTooLarge)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.app.BreakdownService.Ingest(r.Context(), source, bytes.NewReader(data))
	if err != nil {
		var formatErr *breakdown.FormatError
		switch {
		case errors.As(err, &formatErr):
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: formatErr.Error(),
				Code:  codeIngestionFormat,
				Line:  formatErr.Line,
			})
		case errors.Is(err, breakdown.ErrIngestionFormat):
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), codeIngestionFormat)
		case errors.Is(err, breakdown.ErrSuperseded):
			WriteErrorWithCode(w, http.StatusConflict, err.Error(), codeIngestionSuperseded)
		default:
			s.logger.Error().Err(err).Str("source", source).Msg("Ingestion failed")
			WriteError(w, http.StatusInternalServerError, "Ingestion failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// readUpload returns the upload's source name and bytes.
func readUpload(r *http.Request, limit int64) (string, []byte, error) {
	source := r.URL.Query().Get("source")

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(limit); err != nil {
			return "", nil, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("multipart field \"file\" is required: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		if source == "" {
			source = header.Filename
		}
		return orDefault(source, "upload"), data, nil
	}

	if r.Body == nil {
		return "", nil, errors.New("request body is required")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	return orDefault(source, "upload"), data, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// handleLastIngestion handles GET /api/ingestion.
func (s *Server) handleLastIngestion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summary := s.app.BreakdownService.LastIngestion(r.Context())
	if summary == nil {
		WriteError(w, http.StatusNotFound, "No data has been ingested")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// handleFundList handles GET /api/funds.
func (s *Server) handleFundList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	funds := s.app.BreakdownService.ListFunds(ctx)
	if funds == nil {
		funds = []string{}
	}
	WriteJSON(w, http.StatusOK, fundListResponse{
		Funds:    funds,
		Selected: s.app.BreakdownService.SelectedFund(ctx),
	})
}

// handleSelectedFund handles GET and PUT /api/funds/selected.
func (s *Server) handleSelectedFund(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodPut {
		var req selectedFundRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		s.app.BreakdownService.SelectFund(ctx, req.Fund)
	}

	WriteJSON(w, http.StatusOK, selectedFundRequest{Fund: s.app.BreakdownService.SelectedFund(ctx)})
}

// handleFundBreakdowns handles GET /api/funds/{fund}/breakdowns.
func (s *Server) handleFundBreakdowns(w http.ResponseWriter, r *http.Request, fund string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeBreakdowns(w, fund, s.app.BreakdownService.GetCharts(r.Context(), fund))
}

// handleSelectedBreakdowns handles GET /api/breakdowns for the selected fund.
func (s *Server) handleSelectedBreakdowns(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	fund, charts := s.app.BreakdownService.GetSelectedCharts(r.Context())
	s.writeBreakdowns(w, fund, charts)
}

// writeBreakdowns writes a fund's charts in both list and map form, the map
// derived from the same charts. Unknown funds yield empty collections.
func (s *Server) writeBreakdowns(w http.ResponseWriter, fund string, charts []models.Chart) {
	if charts == nil {
		charts = []models.Chart{}
	}
	breakdowns := breakdown.ChartMap(charts)
	WriteJSON(w, http.StatusOK, breakdownsResponse{
		Fund:       fund,
		Breakdowns: breakdowns,
		Charts:     charts,
	})
}

// handleFundReport handles GET /api/funds/{fund}/report?format=table|markdown|json.
// The default is markdown source; render=true renders it as plain text.
func (s *Server) handleFundReport(w http.ResponseWriter, r *http.Request, fund string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ReportService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Reports are not available")
		return
	}

	q := r.URL.Query()
	rep, err := s.app.ReportService.GenerateReport(r.Context(), fund, report.Options{
		Format: orDefault(q.Get("format"), report.FormatMarkdown),
		Raw:    q.Get("render") != "true",
		Style:  "notty",
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, rep.Body)
}
