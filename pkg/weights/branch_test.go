package weights

import "testing"

func TestBranchName(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"C", "Ciencias"},
		{"SyJ", "Ciencias Sociales y Jurídicas"},
		{"C+SD", "Ciencias + CC. de la Salud"},
		{"C + SyJ", "Ciencias + CC. Sociales"},
		{"AyH+IyA", "Artes y Humanidades + Ingeniería y Arquitectura"},
		{"XX", "XX"},
	}
	for _, tt := range tests {
		if got := BranchName(tt.code); got != tt.want {
			t.Errorf("BranchName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestPrimaryBranch(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"C", "C"},
		{"AyH+SyJ", "AyH"},
		{" IyA + C ", "IyA"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PrimaryBranch(tt.code); got != tt.want {
			t.Errorf("PrimaryBranch(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
