package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/pipeline"
)

// diagramQuery holds the dashboard's diagram controls.
type diagramQuery struct {
	Branch    string   `validate:"max=32"`
	Match     string   `validate:"omitempty,oneof=exact primary any"`
	Programs  []string `validate:"max=500,dive,min=1,max=300"`
	Focus     string   `validate:"max=300"`
	Inclusive bool
	All       bool
	Global    bool
	Cap       int    `validate:"gte=0,lte=1000"`
	Title     string `validate:"max=200"`
}

func parseBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	if v == "on" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", key, v)
	}
	return b, nil
}

func parseInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: not an integer: %q", key, v)
	}
	return n, nil
}

func parseFloat(q url.Values, key string, def float64) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", key, v)
	}
	return f, nil
}

// programs collects repeated program params, dropping empty ones.
func programs(q url.Values) []string {
	var out []string
	for _, p := range q["program"] {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) parseDiagramQuery(q url.Values) (diagramQuery, error) {
	var err error
	dq := diagramQuery{
		Branch:   strings.TrimSpace(q.Get("branch")),
		Match:    q.Get("match"),
		Programs: programs(q),
		Focus:    strings.TrimSpace(q.Get("focus")),
		Title:    q.Get("title"),
	}
	if dq.Inclusive, err = parseBool(q, "inclusive"); err != nil {
		return dq, err
	}
	if dq.All, err = parseBool(q, "all"); err != nil {
		return dq, err
	}
	if dq.Global, err = parseBool(q, "global"); err != nil {
		return dq, err
	}
	if dq.Cap, err = parseInt(q, "cap"); err != nil {
		return dq, err
	}
	if err := s.validate.Struct(dq); err != nil {
		return dq, validationError(err)
	}
	return dq, nil
}

// pipelineOptions turns the controls into pipeline options. The mode is
// always explicit: inclusive when toggled, the server default otherwise.
func (s *Server) pipelineOptions(dq diagramQuery) pipeline.Options {
	mode := s.mode
	if dq.Inclusive {
		mode = flow.Inclusive
	}
	return pipeline.Options{
		Branch:          dq.Branch,
		Match:           dq.Match,
		Programs:        dq.Programs,
		Focus:           dq.Focus,
		Mode:            mode.String(),
		DensityCap:      dq.Cap,
		ShowZeroWeights: dq.All,
		Global:          dq.Global,
		Title:           dq.Title,
		LinkBase:        dq.linkBase(),
		Logger:          s.logger,
	}
}

// linkBase is the dashboard URL that diagram nodes link to, carrying every
// control except the focus itself.
func (dq diagramQuery) linkBase() string {
	q := url.Values{}
	q.Set("view", "graph")
	if dq.Branch != "" {
		q.Set("branch", dq.Branch)
	}
	if dq.Match != "" {
		q.Set("match", dq.Match)
	}
	for _, p := range dq.Programs {
		q.Add("program", p)
	}
	if dq.Inclusive {
		q.Set("inclusive", "1")
	}
	if dq.All {
		q.Set("all", "1")
	}
	if dq.Global {
		q.Set("global", "1")
	}
	if dq.Cap > 0 {
		q.Set("cap", strconv.Itoa(dq.Cap))
	}
	return "/?" + q.Encode()
}

// query re-encodes the controls for the diagram URL.
func (dq diagramQuery) query() string {
	base := dq.linkBase()
	q, _ := url.ParseQuery(strings.TrimPrefix(base, "/?"))
	q.Del("view")
	if dq.Focus != "" {
		q.Set("focus", dq.Focus)
	}
	return q.Encode()
}

func formatFromPath(r *http.Request) string {
	p := r.URL.Path
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i+1:]
	}
	return ""
}
