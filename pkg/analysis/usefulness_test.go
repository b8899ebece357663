package analysis

import (
	"testing"

	"github.com/matzehuels/pondera/pkg/weights"
)

func TestUsefulness(t *testing.T) {
	tbl, err := weights.New([]string{"Matemáticas_II", "Física", "Química", "Biología"},
		weights.Record{Program: "Informática", Branch: "IyA", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.15}},
		weights.Record{Program: "Arquitectura", Branch: "IyA", Values: map[string]float64{"Matemáticas_II": 0.2, "Física": 0.1}},
		weights.Record{Program: "Medicina", Branch: "C", Values: map[string]float64{"Química": 0.2, "Biología": 0.2}},
		weights.Record{Program: "Medicina", Branch: "C", Values: map[string]float64{"Química": 0.2, "Biología": 0.2}},
		weights.Record{Program: "Bioquímica", Branch: "C+SD", Values: map[string]float64{"Química": 0.2}},
		weights.Record{Program: "Historia", Branch: "AyH"},
	)
	if err != nil {
		t.Fatal(err)
	}

	got := Usefulness(tbl, DefaultMinCoefficient, 1)
	if len(got) != 2 {
		t.Fatalf("branches = %+v, want C and IyA", got)
	}
	// MainBranches order: C before IyA.
	if got[0].Branch != "C" || got[0].Name != "Ciencias" {
		t.Errorf("first branch = %+v", got[0])
	}
	if s := got[0].Subjects; len(s) != 1 || s[0].Subject != "Química" || s[0].Programs != 2 {
		t.Errorf("C subjects = %+v, want Química x2", s)
	}
	if s := got[1].Subjects; len(s) != 1 || s[0].Subject != "Matemáticas_II" || s[0].Programs != 2 {
		t.Errorf("IyA subjects = %+v, want Matemáticas_II x2", s)
	}

	all := Usefulness(tbl, DefaultMinCoefficient, 0)
	iya := all[1].Subjects
	if len(iya) != 2 || iya[1].Subject != "Física" || iya[1].Programs != 1 {
		t.Errorf("IyA subjects = %+v, want Física counted once at 0.15", iya)
	}
}

func TestUsefulnessTieOrder(t *testing.T) {
	tbl, err := weights.New([]string{"Química", "Biología"},
		weights.Record{Program: "Farmacia", Branch: "SD", Values: map[string]float64{"Química": 0.2, "Biología": 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	got := Usefulness(tbl, 0.2, 10)
	if s := got[0].Subjects; s[0].Subject != "Biología" || s[1].Subject != "Química" {
		t.Errorf("ties = %+v, want alphabetical", s)
	}
}
