package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/shiprec/internal/core"
	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/logging"
	"github.com/JonMunkholm/shiprec/internal/web/templates"
)

// KindResponse describes one kind.
type KindResponse struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

// JobAccepted is returned when a background job starts.
type JobAccepted struct {
	JobID string `json:"jobId"`
}

func kindParam(r *http.Request) (core.Kind, error) {
	key := chi.URLParam(r, "kind")
	if key == "" {
		return core.Kind{}, fmt.Errorf("%w: kind", errMissingPath)
	}
	k, ok := core.Get(key)
	if !ok {
		return core.Kind{}, fmt.Errorf("%w: %s", core.ErrUnknownKind, key)
	}
	return k, nil
}

func parseIntParam(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}

// ============================================================================
// Pages
// ============================================================================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kinds := s.service.Kinds()
	cards := make([]templates.KindCard, len(kinds))
	for i, k := range kinds {
		cards[i] = templates.KindCard{Key: k.Key, Label: k.Label, Columns: k.Columns}
	}

	history, err := s.service.History(ctx, 1, 20)
	if err != nil {
		// the dashboard still renders without history
		logging.FromContext(ctx).Warn("load job history", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Dashboard(templates.DashboardData{
		Kinds:   cards,
		Jobs:    s.service.Jobs(),
		History: history,
		Now:     time.Now(),
	}).Render(ctx, w)
}

func (s *Server) handleJobPage(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.JobPage(job, time.Now()).Render(r.Context(), w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"kinds":      core.KindCount(),
		"activeJobs": s.service.Limiter().ActiveCount(),
	})
}

// ============================================================================
// Kinds and jobs
// ============================================================================

func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := s.service.Kinds()
	resp := make([]KindResponse, len(kinds))
	for i, k := range kinds {
		resp[i] = KindResponse{Key: k.Key, Label: k.Label, Columns: k.Columns}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Jobs())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Cancel(chi.URLParam(r, "jobID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r, "page", 1)
	size := parseIntParam(r, "size", 50)

	history, err := s.service.History(r.Context(), page, size)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// handleJobEvents streams job progress as Server-Sent Events until the job
// finishes. Each event id is the record count so far.
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	last, err := s.service.Job(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, errors.New("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	send := func(event string, p core.JobProgress) {
		data, _ := json.Marshal(p)
		fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", p.Records, event, data)
		flusher.Flush()
	}

	send("progress", last)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for !last.Done() {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			p, err := s.service.Job(id)
			if err != nil {
				// job expired from the tracker
				return
			}
			if p.Phase != last.Phase || p.Records != last.Records {
				send("progress", p)
			}
			last = p
		}
	}
	send("complete", last)
}

// ============================================================================
// Import and export
// ============================================================================

// handleImport starts a background import. The file is either the raw
// request body or the "file" part of a multipart form.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	lines, fileName, err := readImport(r, k)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id, err := s.service.SubmitImport(r.Context(), k.Key, fileName, lines)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobAccepted{JobID: id})
}

func readImport(r *http.Request, k core.Kind) ([]string, string, error) {
	fileName := r.URL.Query().Get("file")
	if fileName == "" {
		fileName = k.Key + ".csv"
	}

	var body io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				return nil, "", fmt.Errorf("%w: %w", errFileTooBig, err)
			}
			return nil, "", errNoFile
		}
		defer file.Close()
		body, fileName = file, header.Filename
	}

	lines, err := exchange.ReadLines(body)
	if err != nil {
		if tooLarge(err) {
			return nil, "", fmt.Errorf("%w: %w", errFileTooBig, err)
		}
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(lines) == 0 {
		return nil, "", errNoFile
	}
	return lines, fileName, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// handleExport starts a background export to the export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id, err := s.service.SubmitExport(r.Context(), k.Key, r.URL.Query().Get("file"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobAccepted{JobID: id})
}

// handleDownload runs an export and streams the file back.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", k.Key, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	tw := &trackingWriter{w: w}
	if _, err := s.service.ExportTo(r.Context(), k.Key, tw); err != nil {
		if !tw.wrote {
			s.respondError(w, r, err)
			return
		}
		// headers are gone; the job status row has the error
		logging.FromContext(r.Context()).Error("download interrupted", "kind", k.Key, "error", err)
	}
}

// trackingWriter notes whether anything reached the client.
type trackingWriter struct {
	w     io.Writer
	wrote bool
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.wrote = true
	}
	return t.w.Write(p)
}
