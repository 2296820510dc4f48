package booking

import "fmt"

// Stage identifies which pipeline stage raised an error, for the
// orchestrator trace.
type Stage string

const (
	StageSE           Stage = "SE"
	StageAR           Stage = "AR"
	StageTS           Stage = "TS"
	StageTD           Stage = "TD"
	StageLD           Stage = "LD"
	StageScheduler    Stage = "SCHEDULER"
	StageTA           Stage = "TA"
	StageEC           Stage = "EC"
	StageOrchestrator Stage = "ORCHESTRATOR"
)

// Kind is one entry of the error taxonomy. It is the value callers switch
// on, not the Go type of the error.
type Kind string

const (
	KindParseLLM             Kind = "PARSE_LLM"
	KindTSParse              Kind = "TS_PARSE"
	KindTSInvariant          Kind = "TS_INVARIANT"
	KindTDNoCal              Kind = "TD_NO_CAL"
	KindLDInvalid            Kind = "LD_INVALID"
	KindSchedInfeasibleTotal Kind = "SCHED_INFEASIBLE_TOTAL"
	KindSchedInfeasibleLocal Kind = "SCHED_INFEASIBLE_LOCAL"
	KindTAValidation         Kind = "TA_VALIDATION"
	KindBackendUnavailable   Kind = "BACKEND_UNAVAILABLE"
	KindECPartial            Kind = "EC_PARTIAL"
)

// StageError is the common shape of every error the pipeline surfaces: a
// stage tag, a taxonomy kind, and a human message, plus whatever
// kind-specific detail fields apply.
type StageError struct {
	Stage   Stage
	Kind    Kind
	Message string

	// SCHED_INFEASIBLE_TOTAL
	NeedMinutes int
	HaveMinutes int

	// SCHED_INFEASIBLE_LOCAL
	TaskIndex int

	// EC_PARTIAL
	Succeeded int
	Total     int

	Err error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewParseLLMError reports a non-JSON or schema-violating LLM response.
func NewParseLLMError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindParseLLM, Message: "malformed LLM output", Err: err}
}

// NewInfeasibleTotal reports that the scheduler cannot place every task
// regardless of arrangement.
func NewInfeasibleTotal(need, have int) *StageError {
	return &StageError{
		Stage:       StageScheduler,
		Kind:        KindSchedInfeasibleTotal,
		Message:     fmt.Sprintf("need %dm, have %dm", need, have),
		NeedMinutes: need,
		HaveMinutes: have,
	}
}

// NewInfeasibleLocal reports that task taskIndex could not be placed
// despite sufficient total capacity.
func NewInfeasibleLocal(taskIndex int) *StageError {
	return &StageError{
		Stage:     StageScheduler,
		Kind:      KindSchedInfeasibleLocal,
		Message:   fmt.Sprintf("task %d has no feasible slot", taskIndex),
		TaskIndex: taskIndex,
	}
}

// NewTSParseError reports an unparseable canonical time or duration.
func NewTSParseError(err error) *StageError {
	return &StageError{Stage: StageTS, Kind: KindTSParse, Message: "unparseable time or duration", Err: err}
}

// NewTSInvariantError reports a self-inconsistent resolved window (e.g.
// end before start, or duration exceeding the window).
func NewTSInvariantError(message string) *StageError {
	return &StageError{Stage: StageTS, Kind: KindTSInvariant, Message: message}
}

// NewTDNoCalError reports that no writable calendar matches the
// classifier's chosen title.
func NewTDNoCalError(title string) *StageError {
	return &StageError{Stage: StageTD, Kind: KindTDNoCal, Message: fmt.Sprintf("no writable calendar matches %q", title)}
}

// NewLDInvalidError reports a decomposition that still violates the
// count/duration constraints after one retry.
func NewLDInvalidError(message string) *StageError {
	return &StageError{Stage: StageLD, Kind: KindLDInvalid, Message: message}
}

// NewTAValidationError reports a post-scheduler invariant breach.
func NewTAValidationError(message string) *StageError {
	return &StageError{Stage: StageTA, Kind: KindTAValidation, Message: message}
}

// NewBackendUnavailableError reports a connection failure to the calendar
// backend; the query aborts without side effects.
func NewBackendUnavailableError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindBackendUnavailable, Message: "calendar backend unavailable", Err: err}
}

// NewECPartial reports that at least one child event POST failed.
func NewECPartial(succeeded, total int) *StageError {
	return &StageError{
		Stage:     StageEC,
		Kind:      KindECPartial,
		Message:   fmt.Sprintf("%d of %d events created", succeeded, total),
		Succeeded: succeeded,
		Total:     total,
	}
}
