package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/zombor/lotto-tracker/internal/lottery"
)

// maxUploadSize covers high-resolution phone photos
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes {"error": message} with the given status
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case lottery.IsSelectionError(err),
		errors.Is(err, lottery.ErrUnknownStatus),
		errors.Is(err, lottery.ErrMissingDrawDate),
		errors.Is(err, ErrEmptyPhoto):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDrawRecorded),
		errors.Is(err, lottery.ErrTicketFinal),
		errors.Is(err, lottery.ErrAlreadyChecked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// serviceError logs unexpected failures and reports err to the client
func serviceError(w http.ResponseWriter, action string, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		slog.Error("Error "+action, "error", err)
		jsonError(w, "Internal server error", code)
		return
	}
	jsonError(w, err.Error(), code)
}

// parseDrawDate accepts "2006-01-02" or RFC 3339; empty yields the zero time
func parseDrawDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid draw date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// filterFromQuery reads ?type=&status=&q= into a Filter
func filterFromQuery(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{Search: q.Get("q")}
	if t := q.Get("type"); t != "" {
		lt, err := lottery.ParseLotteryType(t)
		if err != nil {
			return Filter{}, err
		}
		f.Type = lt
	}
	status, err := lottery.ParseTicketStatus(q.Get("status"))
	if err != nil {
		return Filter{}, err
	}
	f.Status = status
	return f, nil
}

// handleListLotteries returns the supported games
func (s *Server) handleListLotteries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Lotteries())
}

type toggleRequest struct {
	Type        string       `json:"type"`
	MainNumbers []int        `json:"main_numbers"`
	SpecialBall int          `json:"special_ball"`
	Pool        lottery.Pool `json:"pool"`
	Number      int          `json:"number"`
}

type toggleResponse struct {
	lottery.Selection
	Complete bool   `json:"complete"`
	Error    string `json:"error,omitempty"`
}

// handleToggleSelection applies one number tap to a client-held selection.
// A rejected number comes back with the unchanged selection and an error; a
// held selection that could not have come from the toggles is a bad request.
func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := lottery.ParseLotteryType(req.Type)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := lottery.ValidatePartial(req.MainNumbers, req.SpecialBall, t); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sel := lottery.NewSelection(t)
	if req.MainNumbers != nil {
		sel.Main = req.MainNumbers
	}
	sel.Special = req.SpecialBall

	switch req.Pool {
	case lottery.PoolMain, "":
		err = sel.ToggleMain(req.Number)
	case lottery.PoolSpecial:
		err = sel.ToggleSpecial(req.Number)
	default:
		jsonError(w, fmt.Sprintf("unknown pool %q", req.Pool), http.StatusBadRequest)
		return
	}

	resp := toggleResponse{Selection: *sel, Complete: sel.IsComplete()}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// contentTypeFor guesses a MIME type from the upload's extension
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanTicket stores an uploaded ticket photo and returns the plays read from it
func (s *Server) handleScanTicket(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	t, err := lottery.ParseLotteryType(r.FormValue("type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a ticket photo to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	result, err := s.service.ScanTicket(header.Filename, data, contentType, t)
	if err != nil {
		serviceError(w, "scanning ticket", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type createTicketRequest struct {
	Type        string `json:"type"`
	MainNumbers []int  `json:"main_numbers"`
	SpecialBall int    `json:"special_ball"`
	DrawDate    string `json:"draw_date"`
	ScanID      string `json:"scan_id"`
}

// handleCreateTicket saves a complete selection as a pending ticket
func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := lottery.ParseLotteryType(req.Type)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	drawDate, err := parseDrawDate(req.DrawDate)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := s.service.CommitTicket(NewTicket{
		Type:        t,
		MainNumbers: req.MainNumbers,
		SpecialBall: req.SpecialBall,
		DrawDate:    drawDate,
		ScanID:      req.ScanID,
	})
	if err != nil {
		serviceError(w, "saving ticket", err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

// handleListTickets returns tickets matching the query filter
func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tickets, err := s.service.ListTickets(f)
	if err != nil {
		serviceError(w, "listing tickets", err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

// handleGetTicket returns a single ticket
func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.service.GetTicket(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, "Ticket not found", http.StatusNotFound)
			return
		}
		serviceError(w, "getting ticket", err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// handleGetTicketPhoto returns the scanned photo for a ticket
func (s *Server) handleGetTicketPhoto(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetTicketPhoto(r.PathValue("id"))
	if err != nil {
		corsError(w, "Photo not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteTicket deletes a ticket
func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTicket(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, "Ticket not found", http.StatusNotFound)
			return
		}
		serviceError(w, "deleting ticket", err)
		return
	}

	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleExpireTickets runs the expiry sweep on demand
func (s *Server) handleExpireTickets(w http.ResponseWriter, r *http.Request) {
	expired, err := s.service.ExpireTickets()
	if err != nil {
		serviceError(w, "expiring tickets", err)
		return
	}
	writeJSON(w, http.StatusOK, expired)
}

type drawRequest struct {
	Type        string `json:"type"`
	DrawDate    string `json:"draw_date"`
	MainNumbers []int  `json:"main_numbers"`
	SpecialBall int    `json:"special_ball"`
}

// handleRecordDraw stores official numbers and settles matching tickets
func (s *Server) handleRecordDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := lottery.ParseLotteryType(req.Type)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	drawDate, err := parseDrawDate(req.DrawDate)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := s.service.RecordDrawResult(lottery.DrawResult{
		Type:        t,
		DrawDate:    drawDate,
		MainNumbers: req.MainNumbers,
		SpecialBall: req.SpecialBall,
	})
	if err != nil {
		serviceError(w, "recording draw result", err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// handleListDraws returns recorded drawings
func (s *Server) handleListDraws(w http.ResponseWriter, r *http.Request) {
	draws, err := s.service.ListDrawResults()
	if err != nil {
		serviceError(w, "listing draw results", err)
		return
	}
	writeJSON(w, http.StatusOK, draws)
}

// handleListAlerts returns alerts matching the query filter
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := s.service.ListAlerts(f)
	if err != nil {
		serviceError(w, "listing alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
