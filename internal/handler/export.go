// Package handler — export.go implements GET /export.
// Returns all posts with their category and tags as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fanblog/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"post_id", "post_title", "post_slug", "status", "created_at",
	"category_title", "category_slug", "tags",
}

// GetExport implements GET /export.
// It returns one row per post, drafts included.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format, ok := queryString(w, r, "format")
	if !ok {
		return
	}
	if format != "" && format != "csv" && format != "json" {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid format: must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err, "export not found")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONResponse(rows))
}

// buildJSONResponse converts domain rows to the typed JSON response.
func buildJSONResponse(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToResponse(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV.
// Tags within a row are pipe-separated ("|") to keep each post on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="fanblog-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToResponse maps a domain.ExportRow to the wire ExportRow type.
// Empty category fields become nil pointers (omitempty in JSON).
func domainRowToResponse(r domain.ExportRow) ExportRow {
	postID, _ := uuid.Parse(r.PostID)

	row := ExportRow{
		PostId:    postID,
		PostTitle: r.PostTitle,
		PostSlug:  r.PostSlug,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		Tags:      r.Tags,
	}
	if row.Tags == nil {
		row.Tags = []string{}
	}
	if r.CategoryTitle != "" {
		row.CategoryTitle = &r.CategoryTitle
	}
	if r.CategorySlug != "" {
		row.CategorySlug = &r.CategorySlug
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Tags are joined with "|".
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.PostID,
		r.PostTitle,
		r.PostSlug,
		r.Status,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.CategoryTitle,
		r.CategorySlug,
		strings.Join(r.Tags, "|"),
	}
}
