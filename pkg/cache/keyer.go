package cache

import "sort"

// GraphKeyOpts holds every option that changes a built graph.
type GraphKeyOpts struct {
	Branch     string   `json:"branch,omitempty"`
	Match      string   `json:"match,omitempty"`
	Programs   []string `json:"programs,omitempty"`
	Focus      string   `json:"focus,omitempty"`
	Mode       string   `json:"mode"`
	DensityCap int      `json:"density_cap,omitempty"`
	ShowZero   bool     `json:"show_zero,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format        string `json:"format"`
	Title         string `json:"title,omitempty"`
	GroupByBranch bool   `json:"group_by_branch,omitempty"`
	LinkBase      string `json:"link_base,omitempty"`
}

// Keyer derives cache keys. Keys built from equal inputs are equal.
type Keyer interface {
	// GraphKey identifies a graph built from a table with the given options.
	GraphKey(tableHash string, opts GraphKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a graph.
	ArtifactKey(graphKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey implements Keyer. Program order does not matter.
func (DefaultKeyer) GraphKey(tableHash string, opts GraphKeyOpts) string {
	if len(opts.Programs) > 0 {
		progs := append([]string(nil), opts.Programs...)
		sort.Strings(progs)
		opts.Programs = progs
	}
	return hashKey("graph", tableHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphKey, opts)
}
