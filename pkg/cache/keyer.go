package cache

// Keyer derives cache keys for layout artifacts.
type Keyer interface {
	// SolutionKey identifies a solver result for a snapshot.
	SolutionKey(snapshotHash string, opts SolutionKeyOpts) string
	// MetricsKey identifies a metrics report for a snapshot.
	MetricsKey(snapshotHash string) string
}

// SolutionKeyOpts are the solver settings that change a solution.
type SolutionKeyOpts struct {
	Solver string         `json:"solver"`
	Params map[string]any `json:"params,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SolutionKey implements Keyer.
func (DefaultKeyer) SolutionKey(snapshotHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", snapshotHash, opts)
}

// MetricsKey implements Keyer.
func (DefaultKeyer) MetricsKey(snapshotHash string) string {
	return hashKey("metrics", snapshotHash)
}
