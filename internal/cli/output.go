package cli

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pondera/pkg/errors"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// parseOutput validates an --output value.
func parseOutput(s string) (string, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "", outputText:
		return outputText, nil
	case outputJSON:
		return outputJSON, nil
	case outputYAML, "yml":
		return outputYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported output %q (want text, json or yaml)", s)
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
