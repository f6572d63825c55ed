package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// handleHealth reports store reachability and upload slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"uploads": s.service.UploadLimiter().Status(),
	}
	if err := s.service.Store().Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}

// handleListCatalog returns one page of the reference catalog.
func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries, err := s.service.ListCatalog(r.Context(), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// handleSearchCatalog backs the reviewer's item picker.
func (s *Server) handleSearchCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.SearchCatalog(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// handleImportCatalog upserts catalog entries from an uploaded file.
func (s *Server) handleImportCatalog(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, s.service.MaxFileSize())
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.ImportCatalog(r.Context(), name, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleUpload ingests a supplier price list.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, s.service.MaxFileSize())
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Upload(r.Context(), r.FormValue("supplier_name"), name, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRunMatching matches all pending records.
func (s *Server) handleRunMatching(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.RunMatching(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// resultItem is one row of the review list.
type resultItem struct {
	ID              int64               `json:"id"`
	Supplier        string              `json:"supplier_name"`
	Name            string              `json:"name"`
	Barcode         string              `json:"barcode"`
	Article         string              `json:"article"`
	Price           any                 `json:"price"`
	IsMatched       bool                `json:"is_matched"`
	MatchConfidence int                 `json:"match_confidence"`
	MatchType       domain.MatchKind    `json:"match_type"`
	MasterItem      *domain.MasterEntry `json:"master_item,omitempty"`
}

func toResultItem(o domain.MatchOutcome) resultItem {
	item := resultItem{
		ID:              o.Record.ID,
		Supplier:        o.Record.Supplier,
		Name:            o.Record.Name,
		Barcode:         o.Record.Barcode,
		Article:         o.Record.Article,
		IsMatched:       o.Matched(),
		MatchConfidence: o.Confidence,
		MatchType:       o.Kind,
		MasterItem:      o.Entry,
	}
	if o.Record.Price.Valid {
		item.Price = o.Record.Price.Decimal
	}
	return item
}

// handleResults lists records with their outcomes.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	filter := store.ResultFilter{
		Status: store.ParseStatus(r.URL.Query().Get("status")),
		Page:   page,
	}

	outcomes, err := s.service.Results(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]resultItem, len(outcomes))
	for i, o := range outcomes {
		items[i] = toResultItem(o)
	}
	writeJSON(w, http.StatusOK, items)
}

// handleManualMatch applies a reviewer's choice.
func (s *Server) handleManualMatch(w http.ResponseWriter, r *http.Request) {
	recordID, err := parseID("supplier_item_id", chi.URLParam(r, "recordID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	entryID, err := parseID("master_item_id", r.URL.Query().Get("master_item_id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	outcome, err := s.service.ManualMatch(r.Context(), recordID, entryID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    toResultItem(outcome),
	})
}

// handleExport serves matched records as a CSV or XML attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	data, f, err := s.service.Export(r.Context(), format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+f.Filename())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
