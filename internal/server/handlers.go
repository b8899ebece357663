package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matzehuels/pondera/pkg/analysis"
	"github.com/matzehuels/pondera/pkg/buildinfo"
	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/graph"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/weights"
)

// EmptyHeader is set on 204 diagram responses.
const EmptyHeader = "X-Pondera-Result"

const maxBodyBytes = 64 << 10

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	dq, err := s.parseDiagramQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	format, err := render.ParseFormat(formatFromPath(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := s.pipelineOptions(dq)
	opts.Formats = []string{string(format)}
	res, err := s.runner.Render(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.Empty {
		w.Header().Set(EmptyHeader, "no data")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(res.Artifacts[format])
}

// GraphResponse is the JSON form of a built diagram.
type GraphResponse struct {
	Empty bool        `json:"empty"`
	Stats flow.Stats  `json:"stats"`
	Graph graph.Graph `json:"graph"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	dq, err := s.parseDiagramQuery(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.runner.Build(r.Context(), s.pipelineOptions(dq))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, GraphResponse{
		Empty: g.Empty(),
		Stats: g.Stats,
		Graph: graph.FromDAG(g.DAG),
	})
}

// TableRow is one program in a TableResponse. Coefficients align with
// TableResponse.Columns.
type TableRow struct {
	Program      string    `json:"program"`
	Branch       string    `json:"branch"`
	BranchName   string    `json:"branch_name"`
	Coefficients []float64 `json:"coefficients"`
}

// TableResponse is a filtered slice of the weighting table.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// filterTable applies the table view controls: branch, program, subject
// and sort.
func (s *Server) filterTable(r *http.Request) (*weights.Table, error) {
	q := r.URL.Query()
	match, err := weights.ParseBranchMatch(q.Get("match"))
	if err != nil {
		return nil, err
	}
	t := s.table.FilterBranch(q.Get("branch"), match).FilterPrograms(programs(q)...)

	var subjects []string
	for _, c := range q["subject"] {
		if c = strings.TrimSpace(c); c != "" {
			if !t.HasColumn(c) {
				return nil, errors.New(errors.ErrCodeNotFound, "unknown subject %q", c)
			}
			subjects = append(subjects, c)
		}
	}
	if len(subjects) > 0 {
		t = t.SelectColumns(subjects...)
	}

	if col := q.Get("sort"); col != "" {
		desc, err := parseBool(q, "desc")
		if err != nil {
			return nil, err
		}
		if t, err = t.SortBy(col, desc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func tableResponse(t *weights.Table) TableResponse {
	resp := TableResponse{Columns: t.Columns(), Rows: make([]TableRow, 0, t.Len())}
	for _, row := range t.Rows() {
		resp.Rows = append(resp.Rows, TableRow{
			Program:      row.Program,
			Branch:       row.Branch,
			BranchName:   weights.BranchName(row.Branch),
			Coefficients: row.Values(),
		})
	}
	return resp
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.filterTable(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tableResponse(t))
}

// BranchInfo describes one branch code present in the table.
type BranchInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Programs int    `json:"programs"`
}

func (s *Server) branches() []BranchInfo {
	var out []BranchInfo
	for _, code := range s.table.Branches() {
		out = append(out, BranchInfo{
			Code:     code,
			Name:     weights.BranchName(code),
			Programs: len(s.table.FilterBranch(code, weights.MatchExact).Programs()),
		})
	}
	return out
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.branches())
}

// NodeOption is one focusable node.
type NodeOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// NodesResponse lists focus options per layer.
type NodesResponse struct {
	FirstYear  []NodeOption `json:"first_year"`
	SecondYear []NodeOption `json:"second_year"`
	Programs   []NodeOption `json:"programs"`
}

func (s *Server) nodeOptions(branch string, match weights.BranchMatch) NodesResponse {
	resp := NodesResponse{FirstYear: []NodeOption{}, SecondYear: []NodeOption{}, Programs: []NodeOption{}}
	t := s.table.FilterBranch(branch, match)
	for _, id := range flow.FocusTargets(t, s.runner.Precursors) {
		opt := NodeOption{Key: id.Key(), Label: id.Label()}
		switch id.Layer {
		case flow.FirstYear:
			resp.FirstYear = append(resp.FirstYear, opt)
		case flow.SecondYear:
			resp.SecondYear = append(resp.SecondYear, opt)
		default:
			resp.Programs = append(resp.Programs, opt)
		}
	}
	return resp
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	match, err := weights.ParseBranchMatch(q.Get("match"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.nodeOptions(q.Get("branch"), match))
}

// LegendResponse is the embedded legend of the data file.
type LegendResponse struct {
	weights.Legend
	Formatted string `json:"formatted"`
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	l := s.table.Legend()
	if l.Empty() {
		s.respondError(w, r, errors.New(errors.ErrCodeNotFound, "data file has no legend"))
		return
	}
	s.respondJSON(w, http.StatusOK, LegendResponse{Legend: l, Formatted: l.Formatted()})
}

type usefulnessQuery struct {
	Min float64 `validate:"gte=0,lte=1"`
	Top int     `validate:"gte=1,lte=100"`
}

func (s *Server) handleUsefulness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var uq usefulnessQuery
	var err error
	if uq.Min, err = parseFloat(q, "min", analysis.DefaultMinCoefficient); err != nil {
		s.respondError(w, r, err)
		return
	}
	if uq.Top, err = parseInt(q, "top"); err != nil {
		s.respondError(w, r, err)
		return
	}
	if uq.Top == 0 {
		uq.Top = analysis.DefaultTopN
	}
	if err := s.validate.Struct(uq); err != nil {
		s.respondError(w, r, validationError(err))
		return
	}
	s.respondJSON(w, http.StatusOK, analysis.Usefulness(s.table, uq.Min, uq.Top))
}

// CalculatorRequest is the body of POST /api/calculator.
type CalculatorRequest struct {
	calculator.Input
	Selection string `json:"selection" validate:"omitempty,oneof=contribution input-order"`
}

func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	var req CalculatorRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	res, err := s.calculate(req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// calculate validates req against the table and computes the grade.
func (s *Server) calculate(req CalculatorRequest) (calculator.Result, error) {
	if err := s.validate.Struct(req); err != nil {
		return calculator.Result{}, validationError(err)
	}
	if _, ok := s.table.Row(req.Program); !ok {
		return calculator.Result{}, errors.New(errors.ErrCodeNotFound, "unknown program %q", req.Program)
	}
	policy := s.selection
	if req.Selection != "" {
		p, err := calculator.ParseSelection(req.Selection)
		if err != nil {
			return calculator.Result{}, err
		}
		policy = p
	}
	return calculator.Compute(s.table, req.Input, policy)
}

// HealthResponse reports the loaded dataset.
type HealthResponse struct {
	Status   string `json:"status"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Skipped  int    `json:"skipped"`
	Encoding string `json:"encoding"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Rows:     s.table.Len(),
		Columns:  len(s.table.Columns()),
		Skipped:  s.table.Skipped(),
		Encoding: s.table.Encoding(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, buildinfo.Get())
}
