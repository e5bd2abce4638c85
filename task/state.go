package task

type State int

const (
	RECEIVED State = iota
	FEATURIZED
	FILTERED
	SCORED
	DISPATCHED
	COMPLETED
	FAILED
)

func (s State) String() string {
	switch s {
	case RECEIVED:
		return "received"
	case FEATURIZED:
		return "featurized"
	case FILTERED:
		return "filtered"
	case SCORED:
		return "scored"
	case DISPATCHED:
		return "dispatched"
	case COMPLETED:
		return "completed"
	case FAILED:
		return "failed"
	}
	return "unknown"
}

var stateTransitionMap = map[State][]State{
	RECEIVED:   {FEATURIZED, FAILED},
	FEATURIZED: {FILTERED, FAILED},
	FILTERED:   {SCORED, FAILED},
	SCORED:     {DISPATCHED, FAILED},
	DISPATCHED: {COMPLETED, FAILED},
	COMPLETED:  {},
	FAILED:     {},
}

func Contains(states []State, state State) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}

	return false
}

func ValidStateTransition(src State, dst State) bool {
	return Contains(stateTransitionMap[src], dst)
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(stateTransitionMap[s]) == 0
}
