package sim

import "errors"

// Error kinds surfaced by the engine and the controller. Callers match them
// with errors.Is; the concrete error always carries a wrapped description.
var (
	// ErrConfiguration reports an invalid SimConfig. Raised before any engine runs.
	ErrConfiguration = errors.New("invalid simulation configuration")

	// ErrInvalidState reports a result requested before its run completed,
	// or a run started twice.
	ErrInvalidState = errors.New("invalid simulation state")

	// ErrDegenerateAggregate reports a level with no employees across a whole batch.
	ErrDegenerateAggregate = errors.New("degenerate aggregate")
)
