package train

// State is the lifecycle signal returned by the terminate hook.
// The epoch loop keeps running while hooks return StateContinue and
// breaks as soon as one returns StateTerminate.
type State int

const (
	// StateContinue keeps the epoch loop running.
	StateContinue State = iota
	// StateTerminate stops training before the next epoch.
	StateTerminate
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateContinue:
		return "continue"
	case StateTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}
