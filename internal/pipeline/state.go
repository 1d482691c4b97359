package pipeline

type State string

const (
	StateValidating   State = "validating"
	StateRateChecking State = "rate_checking"
	StateCacheLookup  State = "cache_lookup"
	StateAcquiring    State = "acquiring"
	StateSummarizing  State = "summarizing"
	StateDone         State = "done"
	StateErrored      State = "errored"
)

// Observer is called on every state transition of a request.
type Observer func(State)
