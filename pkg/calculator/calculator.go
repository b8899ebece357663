package calculator

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/pondera/pkg/errors"
)

// Admission score weights and limits.
const (
	BachilleratoWeight = 0.6
	GeneralPhaseWeight = 0.4
	MinElectiveScore   = 5.0
	MaxElectives       = 2
	MaxFinal           = 14.0
)

// Reasons an elective did not count.
const (
	ReasonBelowMinimum = "score below 5"
	ReasonNoWeight     = "subject does not weight for this program"
	ReasonDuplicate    = "subject already entered"
	ReasonLimit        = "only two electives count"
)

// Selection decides which electives count when more than two qualify.
type Selection int

const (
	// ByContribution keeps the two largest coefficient×score products,
	// ties in input order.
	ByContribution Selection = iota
	// InputOrder keeps the first two qualifying electives as entered.
	InputOrder
)

func (s Selection) String() string {
	if s == InputOrder {
		return "input-order"
	}
	return "contribution"
}

// ParseSelection parses "contribution" or "input-order".
func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contribution", "by-contribution":
		return ByContribution, nil
	case "input-order", "input", "order":
		return InputOrder, nil
	}
	return ByContribution, errors.New(errors.ErrCodeInvalidInput, "unknown elective selection %q (want contribution or input-order)", s)
}

// Lookup returns the coefficient of a subject for a program.
// *weights.Table satisfies it.
type Lookup interface {
	Coefficient(program, subject string) float64
}

// Elective is one specific-phase exam.
type Elective struct {
	Subject string  `json:"subject" validate:"required"`
	Score   float64 `json:"score" validate:"gte=0,lte=10"`
}

// Input holds the scores for one program.
type Input struct {
	Program      string     `json:"program" validate:"required"`
	Bachillerato float64    `json:"bachillerato" validate:"gte=0,lte=10"`
	GeneralPhase float64    `json:"general_phase" validate:"gte=0,lte=10"`
	Electives    []Elective `json:"electives" validate:"max=4,dive"`
}

// Breakdown explains one elective.
type Breakdown struct {
	Subject      string  `json:"subject"`
	Score        float64 `json:"score"`
	Coefficient  float64 `json:"coefficient"`
	Contribution float64 `json:"contribution"`
	Counted      bool    `json:"counted"`
	Reason       string  `json:"reason,omitempty"`
}

// Result is the admission score.
type Result struct {
	Program   string      `json:"program"`
	Base      float64     `json:"base"`
	Bonus     float64     `json:"bonus"`
	Final     float64     `json:"final"`
	Selection string      `json:"selection"`
	Electives []Breakdown `json:"electives"`
}

// Compute returns the admission score for in.Program:
//
//	base  = 0.6·Bachillerato + 0.4·GeneralPhase
//	final = base + Σ coefficient·score   (at most two electives)
//
// An elective qualifies when its score is at least 5 and its coefficient is
// positive. Scores must be within [0, 10]. Results are rounded to three
// decimals.
func Compute(coeffs Lookup, in Input, policy Selection) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	res := Result{
		Program:   in.Program,
		Base:      BachilleratoWeight*in.Bachillerato + GeneralPhaseWeight*in.GeneralPhase,
		Selection: policy.String(),
		Electives: make([]Breakdown, len(in.Electives)),
	}

	seen := make(map[string]bool)
	var qualifying []int
	for i, e := range in.Electives {
		b := Breakdown{Subject: e.Subject, Score: e.Score}
		switch {
		case seen[e.Subject]:
			b.Reason = ReasonDuplicate
		case e.Score < MinElectiveScore:
			b.Coefficient = coeffs.Coefficient(in.Program, e.Subject)
			b.Reason = ReasonBelowMinimum
		default:
			b.Coefficient = coeffs.Coefficient(in.Program, e.Subject)
			if b.Coefficient <= 0 {
				b.Reason = ReasonNoWeight
				break
			}
			b.Contribution = b.Coefficient * e.Score
			qualifying = append(qualifying, i)
		}
		seen[e.Subject] = true
		res.Electives[i] = b
	}

	if policy == ByContribution {
		slices.SortStableFunc(qualifying, func(a, b int) int {
			return cmp.Compare(res.Electives[b].Contribution, res.Electives[a].Contribution)
		})
	}
	for rank, i := range qualifying {
		if rank >= MaxElectives {
			res.Electives[i].Reason = ReasonLimit
			continue
		}
		res.Electives[i].Counted = true
		res.Bonus += res.Electives[i].Contribution
	}

	res.Base = round3(res.Base)
	res.Bonus = round3(res.Bonus)
	res.Final = round3(res.Base + res.Bonus)
	for i := range res.Electives {
		res.Electives[i].Contribution = round3(res.Electives[i].Contribution)
	}
	return res, nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.Program) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "program is required")
	}
	if err := errors.ValidateScore("bachillerato", in.Bachillerato); err != nil {
		return err
	}
	if err := errors.ValidateScore("general phase", in.GeneralPhase); err != nil {
		return err
	}
	for _, e := range in.Electives {
		if strings.TrimSpace(e.Subject) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "elective subject is required")
		}
		if err := errors.ValidateScore(e.Subject, e.Score); err != nil {
			return err
		}
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
