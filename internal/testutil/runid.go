package testutil

// FixedRunID returns the same run id every time.
//
// CLI JSON output carries the run id as trace_id; a fixed id keeps that
// output byte-identical across test runs.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run id generator.
// If id is empty, NewRunID returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// NewRunID returns the fixed id.
func (g *FixedRunID) NewRunID() string {
	return g.id
}
