// Package calculator computes the university admission score
// ("nota de admisión") for one degree program.
//
// The score combines the Bachillerato average and the general phase of the
// entrance exam with up to two specific-phase electives weighted by the
// program's coefficients:
//
//	res, err := calculator.Compute(tbl, calculator.Input{
//		Program:      "Informática",
//		Bachillerato: 7.5,
//		GeneralPhase: 7.0,
//		Electives:    []calculator.Elective{{Subject: "Matemáticas_II", Score: 6}},
//	}, calculator.ByContribution)
//	// res.Final == 8.5
//
// When more than two electives qualify, [Selection] decides which count:
// [ByContribution] keeps the two largest products, [InputOrder] the first
// two entered. The [Result] explains every elective.
package calculator
