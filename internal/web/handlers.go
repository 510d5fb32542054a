package web

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/archive"
	"github.com/lunacore/luna/internal/crew"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/present"
	"github.com/lunacore/luna/internal/workspace"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}

type createRunRequest struct {
	Brief       string `json:"brief"`
	Template    string `json:"template"`
	ProjectName string `json:"project_name"`
}

type runResponse struct {
	Run
	Previews []present.Preview `json:"previews,omitempty"`
	Paths    []string          `json:"paths,omitempty"`
}

type templateInfo struct {
	Tag         domain.Template `json:"tag"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and a user-facing message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, errors.ErrEmptyBrief),
		stderrors.Is(err, errors.ErrUnknownTemplate),
		stderrors.Is(err, errors.ErrInvalidArgument),
		stderrors.Is(err, errors.ErrInvalidPath),
		stderrors.Is(err, errors.ErrPathEscape):
		status = http.StatusBadRequest
	case stderrors.Is(err, errors.ErrRunNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, errors.ErrRunInProgress):
		status = http.StatusConflict
	case stderrors.Is(err, errors.ErrTooManyRuns):
		status = http.StatusTooManyRequests
	}
	msg, action := errors.Actionable(err)
	writeJSON(w, status, errorResponse{Error: msg, Action: action})
}

func writeInternalError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	templates := make([]templateInfo, 0, len(domain.Templates()))
	for _, t := range domain.Templates() {
		templates = append(templates, templateInfo{Tag: t, Name: t.DisplayName(), Description: t.Description()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"presets":   present.Presets(),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	brief := r.URL.Query().Get("brief")
	if strings.TrimSpace(brief) == "" {
		writeError(w, errors.ErrEmptyBrief)
		return
	}
	writeJSON(w, http.StatusOK, s.gen.Route(brief))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gen.TestAgents(r.Context()))
}

func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"runs": s.runs.List()})
}

// handleCreateRun validates the request, reserves a run slot and starts the
// generation in the background. With ?wait=true it answers once the run ends.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var body createRunRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidArgument, "invalid request body"))
		return
	}

	req := crew.Request{Brief: body.Brief, Template: body.Template, ProjectName: body.ProjectName}
	tmpl, err := crew.Validate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.sem.TryAcquire(1) {
		writeError(w, errors.ErrTooManyRuns)
		return
	}

	req.RunID = s.newID()
	run := Run{
		ID:          req.RunID,
		Status:      domain.RunRunning,
		Brief:       req.Brief,
		Template:    tmpl,
		ProjectName: req.ProjectName,
		SubmittedAt: time.Now().UTC(),
	}
	s.runs.Put(run)

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		defer close(done)
		s.execute(s.baseCtx, req)
	}()

	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
		s.writeRun(w, req.RunID)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// execute runs one generation and records its outcome.
func (s *Server) execute(ctx context.Context, req crew.Request) {
	result, err := s.gen.GenerateProject(ctx, req)
	finished := time.Now().UTC()

	updateErr := s.runs.Update(req.RunID, func(run *Run) {
		run.FinishedAt = &finished
		run.Result = result
		if result != nil {
			run.Status = result.Status
			run.ProjectName = result.ProjectName
		}
		if err != nil {
			run.Status = domain.RunError
			run.Error = errors.UserMessage(err)
		}
	})
	if updateErr != nil {
		s.logger.Warn().Str("run_id", req.RunID).Msg("run finished after it was evicted from the store")
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	s.writeRun(w, chi.URLParam(r, "id"))
}

func (s *Server) writeRun(w http.ResponseWriter, id string) {
	run, err := s.runs.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := runResponse{Run: run}
	if run.Result != nil && len(run.Result.Files) > 0 {
		resp.Paths = workspace.SortedPaths(run.Result.Files)
		resp.Previews = present.Previews(run.Result.Files, resp.Paths, present.PreviewLimit)
	}
	writeJSON(w, http.StatusOK, resp)
}

// finishedRun returns a run whose result is available.
func (s *Server) finishedRun(id string) (Run, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return Run{}, err
	}
	if !run.Done() {
		return Run{}, errors.ErrRunInProgress
	}
	if run.Result == nil {
		return Run{}, errors.Wrap(errors.ErrRunNotFound, "run produced no files")
	}
	return run, nil
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	run, err := s.finishedRun(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	content, ok := run.Result.Files[name]
	if !ok {
		writeError(w, errors.Wrapf(errors.ErrRunNotFound, "no file %q", name))
		return
	}

	// Generated files are untrusted; never let the browser render them.
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; sandbox")
	h.Set("X-Preview-Language", string(present.PreviewLanguage(name)))
	if r.URL.Query().Get("download") == "true" {
		h.Set("Content-Type", "application/octet-stream")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(name)}))
	} else {
		h.Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	run, err := s.finishedRun(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := archive.BuildZip(run.Result.Files)
	if err != nil {
		writeInternalError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": archive.FileName(run.Result.ProjectName),
	}))
	_, _ = w.Write(data)
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	name := run.ProjectName
	if run.Result != nil {
		name = run.Result.ProjectName
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(present.DeployInstructions(run.Template, name)))
}
