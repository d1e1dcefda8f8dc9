package cli

import "github.com/google/uuid"

// RunIDGenerator produces the correlation id logged for every run and
// reported as trace_id in JSON output.
//
// Implemented by UUIDv7Generator (production) and testutil.FixedRunID (tests).
type RunIDGenerator interface {
	NewRunID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
type UUIDv7Generator struct{}

// NewRunID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (o *RootOptions) runID() string {
	if o.RunIDs == nil {
		return UUIDv7Generator{}.NewRunID()
	}
	return o.RunIDs.NewRunID()
}
