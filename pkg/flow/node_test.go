package flow

import (
	"testing"

	"github.com/matzehuels/pondera/pkg/errors"
)

func TestNodeIDKeyRoundTrip(t *testing.T) {
	ids := []NodeID{
		FirstYearSubject("Física_y_Química"),
		SecondYearSubject("Matemáticas_Aplicadas_CC.SS."),
		Program("Grado en Física: Astrofísica"),
	}
	for _, id := range ids {
		got, err := ParseNodeID(id.Key())
		if err != nil {
			t.Fatalf("ParseNodeID(%q) error: %v", id.Key(), err)
		}
		if got != id {
			t.Errorf("ParseNodeID(%q) = %+v, want %+v", id.Key(), got, id)
		}
	}
}

func TestNodeIDDistinctAcrossLayers(t *testing.T) {
	if SecondYearSubject("Física").Key() == Program("Física").Key() {
		t.Error("same name in different layers must have different keys")
	}
}

func TestParseNodeIDErrors(t *testing.T) {
	for _, key := range []string{"", "Física", "bach3:Física", "grado:", "grado: "} {
		_, err := ParseNodeID(key)
		if !errors.Is(err, errors.ErrCodeInvalidNode) {
			t.Errorf("ParseNodeID(%q) error = %v, want INVALID_NODE", key, err)
		}
	}
}

func TestNodeIDLabel(t *testing.T) {
	tests := []struct {
		id   NodeID
		want string
	}{
		{FirstYearSubject("Matemáticas_I"), "Matemáticas I"},
		{SecondYearSubject("Historia_del_Arte"), "Historia del Arte"},
		{Program("Doble_Grado"), "Doble_Grado"},
	}
	for _, tt := range tests {
		if got := tt.id.Label(); got != tt.want {
			t.Errorf("%v.Label() = %q, want %q", tt.id, got, tt.want)
		}
	}
}
