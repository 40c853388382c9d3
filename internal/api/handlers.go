package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mprosk/enronvault/internal/email"
	"github.com/mprosk/enronvault/internal/query"
	"github.com/mprosk/enronvault/internal/store"
)

// EmailJSON is the wire form of a corpus record. Date carries the
// original header's zone offset.
type EmailJSON struct {
	Path      string `json:"path"`
	Date      string `json:"date"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body,omitempty"`
}

func toEmailJSON(rec *email.Record) EmailJSON {
	out := EmailJSON{
		Path:      rec.Path,
		Date:      rec.Date.Format(email.DateFormat),
		Sender:    rec.Sender,
		Recipient: rec.Recipient,
		Subject:   rec.Subject,
	}
	if rec.Body != nil {
		out.Body = *rec.Body
	}
	return out
}

// SearchResponse represents search results.
type SearchResponse struct {
	Total   int         `json:"total"`
	Shown   int         `json:"shown"`
	Results []EmailJSON `json:"results"`
}

// StatsResponse represents corpus statistics.
type StatsResponse struct {
	EmailCount   int64  `json:"email_count"`
	FirstDate    string `json:"first_date,omitempty"`
	LastDate     string `json:"last_date,omitempty"`
	DatabaseSize int64  `json:"database_size_bytes"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// handleIndex describes the API surface.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "enronvault",
		"endpoints": []string{
			"/search", "/email", "/random", "/random_today", "/stats", "/health",
		},
	})
}

// handleStats returns corpus statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.GetStats()
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		EmailCount:   stats.EmailCount,
		FirstDate:    stats.FirstDate,
		LastDate:     stats.LastDate,
		DatabaseSize: stats.DatabaseSize,
	})
}

// searchRequest builds a query request from URL parameters.
func searchRequest(r *http.Request) *query.Request {
	q := r.URL.Query()
	return &query.Request{
		Query:       q.Get("q"),
		Sender:      q.Get("sender"),
		Recipient:   q.Get("recipient"),
		Participant: q.Get("participant"),
		Subject:     q.Get("subject"),
		Body:        q.Get("body"),
		Path:        q.Get("path"),
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
	}
}

// handleSearch searches the corpus. A request with no criteria is
// bounced back to the index rather than scanning everything.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequest(r)

	rs, err := s.engine.Search(r.Context(), req)
	if errors.Is(err, query.ErrNoCriteria) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if errors.Is(err, query.ErrInvalidDate) {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	if err != nil {
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Search failed")
		return
	}

	results := make([]EmailJSON, len(rs.Records))
	for i := range rs.Records {
		results[i] = toEmailJSON(&rs.Records[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Total:   rs.Total,
		Shown:   len(results),
		Results: results,
	})
}

// handleGetEmail returns a single record by corpus path.
func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "Query parameter 'path' is required")
		return
	}

	rec, err := s.engine.GetEmail(r.Context(), path)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No message at that path")
		return
	}
	if err != nil {
		s.logger.Error("failed to get email", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve message")
		return
	}

	writeJSON(w, http.StatusOK, toEmailJSON(rec))
}

// handleRandom returns one random message.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	rec, err := s.engine.RandomEmail(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "empty_corpus", "The corpus has no messages")
		return
	}
	if err != nil {
		s.logger.Error("failed to sample email", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to sample a message")
		return
	}
	writeJSON(w, http.StatusOK, toEmailJSON(rec))
}

// handleRandomToday returns a random message sent on today's month and
// day in any year.
func (s *Server) handleRandomToday(w http.ResponseWriter, r *http.Request) {
	rec, err := s.engine.RandomToday(r.Context(), time.Now())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no_match", "No message was sent on this date")
		return
	}
	if err != nil {
		s.logger.Error("failed to sample email", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to sample a message")
		return
	}
	writeJSON(w, http.StatusOK, toEmailJSON(rec))
}
