package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"registro/internal/core"
	"registro/internal/export"
	"registro/internal/metrics"
	"registro/internal/session"
)

// handleCategories serves the cached catalog; ?refresh=1 forces a refetch
// from the source.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fetch := s.sessions.Categories
	if r.URL.Query().Get("refresh") == "1" {
		fetch = s.sessions.RefreshCategories
	}

	cat, err := fetch(ctx)
	if err != nil {
		metrics.CategoryFetches.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Category fetch failed", "error", err)
		UpstreamError("could not fetch categories").Write(w)
		return
	}
	metrics.CategoryFetches.WithLabelValues("ok").Inc()
	if cat.Incomes == nil {
		cat.Incomes = []string{}
	}
	if cat.Expenses == nil {
		cat.Expenses = []string{}
	}
	NewJSONResponse().Body(cat).Write(w)
}

func (s *Server) binSession(r *http.Request) *session.Session {
	return s.sessions.Session(r.PathValue("bin"))
}

// viewBody is the response shape for list/load: a filtered view plus totals
// computed over that same subset.
type viewBody struct {
	Entries []core.Entry `json:"entries"`
	Totals  core.Totals  `json:"totals"`
}

func newViewBody(entries []core.Entry, totals core.Totals) viewBody {
	if entries == nil {
		entries = []core.Entry{}
	}
	return viewBody{Entries: entries, Totals: totals}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	entries, totals := s.binSession(r).View(f)
	NewJSONResponse().Body(newViewBody(entries, totals)).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	dr, err := decodeEntryRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	entry, err := s.binSession(r).AddEntry(dr)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	metrics.EntriesCreated.WithLabelValues(string(entry.Kind)).Inc()
	slog.InfoContext(r.Context(), "Entry created",
		"bin_id", r.PathValue("bin"),
		"entry_id", entry.ID,
		"kind", entry.Kind,
		"amount_cents", entry.Amount.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(entry).Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequestError("invalid entry id").Write(w)
		return
	}
	dr, err := decodeEntryRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	entry, err := s.binSession(r).UpdateEntry(id, dr)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequestError("invalid entry id").Write(w)
		return
	}
	if err := s.binSession(r).DeleteEntry(id); err != nil {
		writeLedgerError(w, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleClear empties the ledger and persists the empty document, so a
// reload does not resurrect the cleared entries.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.binSession(r)
	sess.Clear()
	doc, err := sess.Save(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	NewJSONResponse().Body(doc).Write(w)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	sess := s.binSession(r)
	if err := sess.Hydrate(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Hydrate failed", "bin_id", r.PathValue("bin"), "error", err)
		UpstreamError("could not load ledger").Write(w)
		return
	}
	entries, totals := sess.View(core.Filter{})
	NewJSONResponse().Body(newViewBody(entries, totals)).Write(w)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	doc, err := s.binSession(r).Save(r.Context())
	if err != nil {
		switch err {
		case session.ErrSaveInFlight:
			metrics.Saves.WithLabelValues("conflict").Inc()
		default:
			metrics.Saves.WithLabelValues("error").Inc()
		}
		writeLedgerError(w, err)
		return
	}
	metrics.Saves.WithLabelValues("ok").Inc()
	NewJSONResponse().Body(doc).Write(w)
}

// handleExport streams a rendered download of the current (filtered) view.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	f, err := parseFilter(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	entries, totals := s.binSession(r).View(f)
	in := export.Input{
		Organization: s.sessions.Organization(),
		Entries:      entries,
		Totals:       totals,
		GeneratedAt:  time.Now(),
	}

	// render to a buffer first so a renderer error never truncates a download
	var buf bytes.Buffer
	var contentType string
	switch format {
	case "pdf":
		contentType = "application/pdf"
		err = export.WritePDF(&buf, in)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, in)
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = export.WriteCSV(&buf, in)
	default:
		BadRequestError("unsupported export format").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "format", format, "error", err)
		ErrorResponse(http.StatusInternalServerError, "export failed").Write(w)
		return
	}

	metrics.Exports.WithLabelValues(format).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+export.Filename(in.Organization, format, in.GeneratedAt)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
