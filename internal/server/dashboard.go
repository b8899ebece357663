package server

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/matzehuels/pondera/pkg/buildinfo"
	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/errors"
	"github.com/matzehuels/pondera/pkg/weights"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dashboard views.
const (
	ViewGraph = "graph"
	ViewTable = "table"
	ViewCalc  = "calc"
)

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"coef":       weights.FormatCoefficient,
		"label":      func(s string) string { return strings.ReplaceAll(s, "_", " ") },
		"branchName": weights.BranchName,
		"inc":        func(i int) int { return i + 1 },
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type focusGroup struct {
	Label   string
	Options []selectOption
}

type calcView struct {
	Program      string
	Bachillerato string
	GeneralPhase string
	Electives    [calculator.MaxElectives]electiveField
	Subjects     []selectOption
	Result       *calculator.Result
}

type electiveField struct {
	Subject string
	Score   string
}

type dashboardData struct {
	View       string
	Query      diagramQuery
	Branches   []selectOption
	Programs   []selectOption
	Focus      []focusGroup
	DiagramURL string
	Empty      bool
	Legend     string
	Table      *TableResponse
	Calc       *calcView
	Error      string
	Version    string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := dashboardData{View: q.Get("view"), Version: buildinfo.Version}
	switch data.View {
	case ViewGraph, ViewTable, ViewCalc:
	case "":
		data.View = ViewGraph
	default:
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown view %q", data.View))
		return
	}

	if l := s.table.Legend(); !l.Empty() {
		data.Legend = l.Formatted()
	}

	dq, err := s.parseDiagramQuery(q)
	if err != nil {
		data.Error = errors.UserMessage(err)
	}
	data.Query = dq
	data.Branches = s.branchOptions(dq.Branch)

	switch data.View {
	case ViewGraph:
		s.graphView(r, &data)
	case ViewTable:
		t, err := s.filterTable(r)
		if err != nil {
			data.Error = errors.UserMessage(err)
			break
		}
		resp := tableResponse(t)
		data.Table = &resp
		data.Programs = s.programOptions(dq.Branch, dq.Programs)
	case ViewCalc:
		data.Calc = s.calcView(r, &data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("render dashboard", "err", err)
	}
}

func (s *Server) graphView(r *http.Request, data *dashboardData) {
	dq := data.Query
	match, _ := weights.ParseBranchMatch(dq.Match)
	data.Programs = s.programOptions(dq.Branch, dq.Programs)

	nodes := s.nodeOptions(dq.Branch, match)
	for _, grp := range []struct {
		label string
		opts  []NodeOption
	}{
		{"1º Bachillerato", nodes.FirstYear},
		{"2º Bachillerato", nodes.SecondYear},
		{"Grados", nodes.Programs},
	} {
		fg := focusGroup{Label: grp.label}
		for _, o := range grp.opts {
			fg.Options = append(fg.Options, selectOption{Value: o.Key, Label: o.Label, Selected: o.Key == dq.Focus})
		}
		data.Focus = append(data.Focus, fg)
	}

	if data.Error != "" {
		return
	}
	g, err := s.runner.Build(r.Context(), s.pipelineOptions(dq))
	if err != nil {
		data.Error = errors.UserMessage(err)
		return
	}
	data.Empty = g.Empty()
	data.DiagramURL = "/diagram.svg?" + dq.query()
}

func (s *Server) calcView(r *http.Request, data *dashboardData) *calcView {
	q := r.URL.Query()
	cv := &calcView{
		Program:      q.Get("program"),
		Bachillerato: q.Get("bachillerato"),
		GeneralPhase: q.Get("general"),
	}
	for _, name := range s.table.Programs() {
		data.Programs = append(data.Programs, selectOption{Value: name, Label: name, Selected: name == cv.Program})
	}
	for i := range cv.Electives {
		n := string(rune('1' + i))
		cv.Electives[i] = electiveField{Subject: q.Get("subject" + n), Score: q.Get("score" + n)}
	}
	if cv.Program == "" {
		return cv
	}

	row, ok := s.table.Row(cv.Program)
	if !ok {
		data.Error = "Grado desconocido: " + cv.Program
		return cv
	}
	for _, c := range row.Positive() {
		cv.Subjects = append(cv.Subjects, selectOption{Value: c, Label: strings.ReplaceAll(c, "_", " ")})
	}
	if cv.Bachillerato == "" || cv.GeneralPhase == "" {
		return cv
	}

	req := CalculatorRequest{Input: calculator.Input{Program: cv.Program}}
	var err error
	if req.Bachillerato, err = parseFloat(q, "bachillerato", 0); err != nil {
		data.Error = errors.UserMessage(err)
		return cv
	}
	if req.GeneralPhase, err = parseFloat(q, "general", 0); err != nil {
		data.Error = errors.UserMessage(err)
		return cv
	}
	for i, e := range cv.Electives {
		if e.Subject == "" {
			continue
		}
		n := string(rune('1' + i))
		score, err := parseFloat(q, "score"+n, 0)
		if err != nil {
			data.Error = errors.UserMessage(err)
			return cv
		}
		req.Electives = append(req.Electives, calculator.Elective{Subject: e.Subject, Score: score})
	}
	res, err := s.calculate(req)
	if err != nil {
		data.Error = errors.UserMessage(err)
		return cv
	}
	cv.Result = &res
	return cv
}

func (s *Server) branchOptions(selected string) []selectOption {
	var out []selectOption
	for _, b := range s.branches() {
		out = append(out, selectOption{Value: b.Code, Label: b.Name, Selected: b.Code == selected})
	}
	return out
}

func (s *Server) programOptions(branch string, selected []string) []selectOption {
	var out []selectOption
	for _, name := range s.table.FilterBranch(branch, weights.MatchExact).Programs() {
		sel := false
		for _, p := range selected {
			if p == name {
				sel = true
				break
			}
		}
		out = append(out, selectOption{Value: name, Label: name, Selected: sel})
	}
	return out
}
