// Package analysis summarizes which second-year subjects matter most per
// knowledge branch.
package analysis

import (
	"cmp"
	"slices"

	"github.com/matzehuels/pondera/pkg/weights"
)

// Defaults for [Usefulness].
const (
	DefaultMinCoefficient = 0.15
	DefaultTopN           = 10
)

// SubjectCount is the number of programs for which a subject weights at
// least the minimum coefficient.
type SubjectCount struct {
	Subject  string `json:"subject" yaml:"subject"`
	Programs int    `json:"programs" yaml:"programs"`
}

// BranchUsefulness lists the most useful subjects for one main branch.
type BranchUsefulness struct {
	Branch   string         `json:"branch" yaml:"branch"`
	Name     string         `json:"name" yaml:"name"`
	Subjects []SubjectCount `json:"subjects" yaml:"subjects"`
}

// Usefulness counts, per primary branch, how many programs give each
// subject a coefficient of at least minCoefficient, and keeps the topN
// subjects by count (ties by subject name). Branches are returned in
// [weights.MainBranches] order followed by any other primary branch in
// order of appearance; branches with no useful subject are omitted.
//
// Rows duplicated by compound-branch expansion count once per program
// within a branch.
func Usefulness(t *weights.Table, minCoefficient float64, topN int) []BranchUsefulness {
	if topN <= 0 {
		topN = DefaultTopN
	}
	counts := make(map[string]map[string]int)
	seen := make(map[[2]string]bool)
	var order []string
	for _, r := range t.Rows() {
		branch := weights.PrimaryBranch(r.Branch)
		if seen[[2]string{branch, r.Program}] {
			continue
		}
		seen[[2]string{branch, r.Program}] = true
		if counts[branch] == nil {
			counts[branch] = make(map[string]int)
			order = append(order, branch)
		}
		for _, col := range t.Columns() {
			if r.Get(col) >= minCoefficient-1e-9 {
				counts[branch][col]++
			}
		}
	}

	branches := slices.Clone(weights.MainBranches)
	for _, b := range order {
		if !slices.Contains(branches, b) {
			branches = append(branches, b)
		}
	}

	var out []BranchUsefulness
	for _, b := range branches {
		if len(counts[b]) == 0 {
			continue
		}
		var subjects []SubjectCount
		for s, n := range counts[b] {
			subjects = append(subjects, SubjectCount{Subject: s, Programs: n})
		}
		slices.SortFunc(subjects, func(x, y SubjectCount) int {
			if c := cmp.Compare(y.Programs, x.Programs); c != 0 {
				return c
			}
			return cmp.Compare(x.Subject, y.Subject)
		})
		if len(subjects) > topN {
			subjects = subjects[:topN]
		}
		out = append(out, BranchUsefulness{Branch: b, Name: weights.BranchName(b), Subjects: subjects})
	}
	return out
}
