// Package weights loads and queries the subject weighting table.
//
// # Data
//
// A weighting table ("tabla de ponderaciones") lists, for every university
// degree program, the coefficient each second-year Bachillerato subject
// contributes to the admission score. Coefficients are usually one of 0,
// 0.1, 0.15 or 0.2.
//
// The source is a delimited text file exported from a spreadsheet:
//
//	Grado;Rama de conocimiento;Matemáticas II;Física;...
//	Informática;IyA;0,2;0,1;...
//
// [Parse] tolerates comma decimals, ISO-8859-1 input, footnote rows and
// short or overlong records. The first header cell may embed a [Legend].
//
// # Filtering
//
// A [Table] is immutable. [Table.FilterBranch], [Table.FilterPrograms],
// [Table.SelectColumns] and [Table.Where] return new tables, so callers can
// share one loaded table between concurrent requests.
//
// # Branches
//
// Rows carry a knowledge-branch code such as "C" or a compound like "C+SD".
// Compound codes listed in [Options.SplitBranches] are expanded at parse
// time into one row per component; [BranchName] maps codes to full names.
package weights
