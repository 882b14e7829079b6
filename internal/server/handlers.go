package server

import (
	"net/http"

	"github.com/matzehuels/reqtrace/pkg/artifacts"
	"github.com/matzehuels/reqtrace/pkg/buildinfo"
	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/detect"
	rterrors "github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/graph"
	"github.com/matzehuels/reqtrace/pkg/pipeline"
	"github.com/matzehuels/reqtrace/pkg/prompts"
	"github.com/matzehuels/reqtrace/pkg/render"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/schema"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// GraphRequest is the body of POST /v1/graph.
type GraphRequest struct {
	Text       string          `json:"text" validate:"max=1048576"`
	Document   string          `json:"document,omitempty"`
	HasPDF     bool            `json:"has_pdf,omitempty"`
	Schema     schema.Snapshot `json:"schema,omitempty"`
	SkipSchema bool            `json:"skip_schema,omitempty"`
	Formats    []string        `json:"formats,omitempty" validate:"omitempty,max=6,dive,oneof=dot svg png pdf raster json"`
	Palette    palette.Table   `json:"palette,omitempty"`
	Title      string          `json:"title,omitempty" validate:"max=200"`
	Width      float64         `json:"width,omitempty" validate:"gte=0,lte=4096"`
	Height     float64         `json:"height,omitempty" validate:"gte=0,lte=4096"`
	Detailed   bool            `json:"detailed,omitempty"`
	Refresh    bool            `json:"refresh,omitempty"`
}

// GraphResponse is returned by POST /v1/graph. Artifacts are data URIs.
type GraphResponse struct {
	RunID      string                   `json:"run_id"`
	Profile    detect.Profile           `json:"profile"`
	Categories classify.CategoryMap     `json:"categories"`
	Layout     graph.Layout             `json:"layout"`
	Artifacts  map[render.Format]string `json:"artifacts"`
	Warnings   []string                 `json:"warnings,omitempty"`
	Cached     bool                     `json:"cached"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if !s.decode(w, r, &req) {
		return
	}
	for code, entry := range req.Palette {
		if err := entry.ValidateOverride(); err != nil {
			s.respondError(w, r, rterrors.Wrap(rterrors.ErrCodeInvalidInput, err, "palette %q", code))
			return
		}
	}

	opts := pipeline.Options{
		Text:       req.Text,
		Document:   req.Document,
		HasPDF:     req.HasPDF,
		Schema:     req.Schema,
		SkipSchema: req.SkipSchema,
		Palette:    req.Palette,
		Title:      req.Title,
		Width:      req.Width,
		Height:     req.Height,
		Detailed:   req.Detailed,
		Refresh:    req.Refresh,
		Logger:     s.logger,
	}
	for _, f := range req.Formats {
		opts.Formats = append(opts.Formats, render.Format(f))
	}

	res, err := s.deps.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	_, colors, _ := render.Colors(res.Graph, render.Options{Palette: req.Palette})
	lay := graph.Export(res.Graph, res.Coordinates, colors)
	lay.Palette, lay.Fallback = res.Palette, res.PaletteFallback

	resp := GraphResponse{
		RunID:      res.RunID,
		Profile:    res.Profile,
		Categories: res.Categories,
		Layout:     lay,
		Artifacts:  make(map[render.Format]string, len(res.Artifacts)),
		Warnings:   res.Warnings,
		Cached:     res.CacheInfo.RenderHit,
	}
	for f, data := range res.Artifacts {
		resp.Artifacts[f] = render.DataURI(f, data)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// TextRequest is the body of the classify, detect and generate routes.
type TextRequest struct {
	Text string `json:"text" validate:"max=1048576"`
}

// ClassifyResponse is returned by POST /v1/classify.
type ClassifyResponse struct {
	Sentences  []string             `json:"sentences"`
	Categories classify.CategoryMap `json:"categories"`
	Matches    int                  `json:"matches"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := rterrors.ValidateText(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}
	c := s.deps.Runner.Classifier
	cats := c.Classify(req.Text)
	sentences := c.Sentences(req.Text)
	if sentences == nil {
		sentences = []string{}
	}
	s.respondJSON(w, http.StatusOK, ClassifyResponse{
		Sentences:  sentences,
		Categories: cats,
		Matches:    cats.Total(),
	})
}

// DetectResponse is returned by POST /v1/detect. Keyword is empty when the
// generic profile was chosen.
type DetectResponse struct {
	Profile detect.Profile `json:"profile"`
	Keyword string         `json:"keyword,omitempty"`
	Title   string         `json:"title"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	profile, keyword := s.detector.Match(req.Text)
	s.respondJSON(w, http.StatusOK, DetectResponse{
		Profile: profile,
		Keyword: keyword,
		Title:   trace.Title(profile),
	})
}

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	Text     string            `json:"text" validate:"required,max=1048576"`
	Document string            `json:"document,omitempty"`
	Table    string            `json:"table,omitempty" validate:"omitempty,max=63"`
	Kinds    []prompts.Kind    `json:"kinds,omitempty" validate:"omitempty,max=4,dive,oneof=system_designs verification_requirements traceability verification_conditions"`
	Examples *prompts.Examples `json:"examples,omitempty"`
}

// GenerateResponse is returned by POST /v1/generate.
type GenerateResponse struct {
	Profile   detect.Profile       `json:"profile"`
	Documents []artifacts.Document `json:"documents"`
	Warnings  []string             `json:"warnings,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		s.respondError(w, r, rterrors.New(rterrors.ErrCodeUnsupported, "document generation is not configured"))
		return
	}
	var req GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := rterrors.ValidateText(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Table != "" {
		if err := rterrors.ValidateTableName(req.Table); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	examples := s.deps.Examples
	if req.Examples != nil {
		examples = req.Examples.WithDefaults()
	}
	genReq := artifacts.Request{
		Requirements: req.Text,
		Categories:   s.deps.Runner.Classifier.Classify(req.Text),
		Profile:      s.detector.Detect(req.Text),
		Examples:     examples,
		Document:     req.Document,
		SampleTable:  req.Table,
		Kinds:        req.Kinds,
	}
	warnings := artifacts.AttachDatabase(r.Context(), &genReq, s.deps.Database, s.deps.SampleSize)

	res, err := s.deps.Generator.Generate(r.Context(), genReq)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if failed := res.Err(); failed != nil && allFailed(res.Documents) {
		s.respondError(w, r, rterrors.Wrap(rterrors.ErrCodeGenerationFailed, failed, "every document failed"))
		return
	}
	s.respondJSON(w, http.StatusOK, GenerateResponse{
		Profile:   genReq.Profile,
		Documents: res.Documents,
		Warnings:  warnings,
	})
}

func allFailed(docs []artifacts.Document) bool {
	for _, d := range docs {
		if d.Err == nil {
			return false
		}
	}
	return len(docs) > 0
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, buildinfo.Get())
}
