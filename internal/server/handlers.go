package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shorts/internal/clipcache"
	"shorts/internal/compose"
	"shorts/internal/narration"
	"shorts/internal/render"
	"shorts/pkg/jobspec"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    compose.ErrorKind         `json:"kind"`
	Message string                    `json:"message"`
	Issues  []jobspec.ValidationError `json:"issues,omitempty"`
}

type mergeResponse struct {
	ID        string             `json:"id"`
	Plan      compose.RenderPlan `json:"plan"`
	Video     string             `json:"video,omitempty"`
	Subtitles string             `json:"subtitles,omitempty"`
	Skipped   bool               `json:"skipped,omitempty"`
	Warnings  []compose.Warning  `json:"warnings,omitempty"`
}

type timingsRequest struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

type timingsResponse struct {
	WordTimings [][]float64 `json:"word_timings"`
}

type clipsBody struct {
	Keyword string           `json:"keyword,omitempty"`
	Clips   []clipcache.Clip `json:"clips"`
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MergeClips handles POST /merge_clips. Body: a job description with clips,
// layout, tts_path, tts_duration, subtitles and word_timings.
func (s *Server) MergeClips(w http.ResponseWriter, r *http.Request) {
	job, err := jobspec.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.Debug("invalid merge body", slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.ObserveFailure(err)
		}
		s.writeError(w, err)
		return
	}

	doRender, err := queryBool(r, "render", s.opts.RenderOnMerge)
	if err != nil {
		s.writeError(w, err)
		return
	}
	force, err := queryBool(r, "force", false)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := mergeResponse{}
	if doRender {
		out, err := s.pipeline.Run(r.Context(), job, render.Options{Force: force})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Plan = out.Plan
		if out.Render != nil {
			resp.Video = out.Render.OutputPath
			resp.Subtitles = out.Render.SubtitlePath
			resp.Skipped = out.Render.Skipped
		}
	} else {
		plan, err := s.pipeline.Plan(r.Context(), job)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Plan = plan
	}
	resp.ID = resp.Plan.ID
	resp.Warnings = resp.Plan.Warnings

	s.log.Info("merge completed",
		slog.String("job_id", resp.ID),
		slog.Bool("rendered", doRender),
		slog.Int("captions", len(resp.Plan.Captions)),
		slog.Int("warnings", len(resp.Warnings)),
	)
	writeJSON(w, http.StatusOK, resp)
}

// Timings handles POST /timings. Body: {"text": "...", "duration": 12.5}.
func (s *Server) Timings(w http.ResponseWriter, r *http.Request) {
	var req timingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	timings, err := narration.EqualShare(req.Text, req.Duration)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", compose.ErrInvalidJob, err))
		return
	}
	writeJSON(w, http.StatusOK, timingsResponse{WordTimings: narration.Pairs(timings)})
}

// GetClips handles GET /clips/{keyword}.
func (s *Server) GetClips(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	clips, ok, err := s.cache.Get(r.Context(), keyword)
	if err != nil {
		s.writeCacheError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
			Kind:    compose.KindClipUnavailable,
			Message: fmt.Sprintf("no clips cached for %q", keyword),
		}})
		return
	}
	writeJSON(w, http.StatusOK, clipsBody{Keyword: keyword, Clips: clips})
}

// PutClips handles PUT /clips/{keyword}. Body: {"clips": [{"link", "path"}]}.
func (s *Server) PutClips(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	var body clipsBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	for i, clip := range body.Clips {
		if clip.Link == "" || clip.Path == "" {
			s.writeError(w, fmt.Errorf("%w: clips[%d] needs link and path", compose.ErrInvalidJob, i))
			return
		}
	}
	if err := s.cache.Put(r.Context(), keyword, body.Clips); err != nil {
		s.writeCacheError(w, err)
		return
	}
	s.log.Info("clip cache updated", slog.String("keyword", keyword), slog.Int("clips", len(body.Clips)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeCacheError(w http.ResponseWriter, err error) {
	if errors.Is(err, clipcache.ErrEmptyKeyword) {
		s.writeError(w, fmt.Errorf("%w: %v", compose.ErrInvalidJob, err))
		return
	}
	s.writeError(w, err)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := compose.Kind(err)
	status := statusFor(kind)
	detail := errorDetail{Kind: kind, Message: err.Error()}

	var verrs jobspec.ValidationErrors
	if errors.As(err, &verrs) {
		detail.Issues = verrs.Issues()
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
	} else {
		s.log.Info("request rejected", slog.String("kind", string(kind)), slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func statusFor(kind compose.ErrorKind) int {
	switch kind {
	case compose.KindInvalidTrim, compose.KindInvalidPlacement, compose.KindInvalidJob:
		return http.StatusBadRequest
	case compose.KindClipUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// queryBool reads an optional boolean query parameter.
func queryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", compose.ErrInvalidJob, name, raw)
	}
	return v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", compose.ErrInvalidJob)
		}
		return fmt.Errorf("%w: decode body: %v", compose.ErrInvalidJob, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
