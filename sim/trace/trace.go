package trace

// TraceLevel controls the verbosity of cycle tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelCycles captures one record per promotion cycle.
	TraceLevelCycles TraceLevel = "cycles"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelCycles: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level   TraceLevel
	Favored string // gender tag the run's bias favors, copied for summaries
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelCycles
}

// SimulationTrace collects cycle records during one engine run.
type SimulationTrace struct {
	Config TraceConfig
	Cycles []CycleRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Cycles: make([]CycleRecord, 0),
	}
}

// RecordCycle appends a cycle record. A nil trace ignores the call.
func (st *SimulationTrace) RecordCycle(record CycleRecord) {
	if st == nil {
		return
	}
	st.Cycles = append(st.Cycles, record)
}
