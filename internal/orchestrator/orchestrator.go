// Package orchestrator wires the pipeline stages into the linear driver
// spec.md names Orchestrator: UQ -> SE -> AR -> TS -> TD -> (LD) -> TA ->
// EC, capturing a per-stage trace and aborting on the first structured
// error.
package orchestrator

import (
	"context"
	"time"

	"github.com/javiermolinar/chronoscribe/internal/absresolve"
	"github.com/javiermolinar/chronoscribe/internal/allotter"
	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/calbackend"
	"github.com/javiermolinar/chronoscribe/internal/decompose"
	"github.com/javiermolinar/chronoscribe/internal/difficulty"
	"github.com/javiermolinar/chronoscribe/internal/eventcreator"
	"github.com/javiermolinar/chronoscribe/internal/llm"
	"github.com/javiermolinar/chronoscribe/internal/scheduler"
	"github.com/javiermolinar/chronoscribe/internal/slotextract"
	"github.com/javiermolinar/chronoscribe/internal/timestd"
)

var allStages = []booking.Stage{
	booking.StageSE, booking.StageAR, booking.StageTS, booking.StageTD,
	booking.StageLD, booking.StageTA, booking.StageEC,
}

// Orchestrator holds every collaborator a pipeline run needs.
type Orchestrator struct {
	LLM     llm.Client
	Backend *calbackend.Client
	Creator *eventcreator.Creator

	ScheduleOptions       scheduler.Options
	Constraints           scheduler.Constraints
	HolidaysCalendarTitle string

	// Now returns the instant AbsoluteResolver's temporal context is built
	// from. Defaults to time.Now; overridable for deterministic tests.
	Now func() time.Time
}

// Run executes the full pipeline for one query, returning the completed
// Trace regardless of outcome, and the scheduled task once TA has produced
// one (also when EC then fails).
func (o *Orchestrator) Run(ctx context.Context, query booking.Query) (*Trace, *booking.ScheduledTask, error) {
	trace := newTrace(allStages...)
	now := o.Now
	if now == nil {
		now = time.Now
	}

	start := time.Now()
	raw, err := slotextract.Extract(ctx, o.LLM, query)
	if err != nil {
		trace.fail(booking.StageSE, err, time.Since(start))
		return trace, nil, err
	}
	trace.ok(booking.StageSE, time.Since(start))

	start = time.Now()
	tctx := absresolve.BuildContext(now(), query.TZ)
	abs, err := absresolve.Resolve(ctx, o.LLM, raw, tctx)
	if err != nil {
		trace.fail(booking.StageAR, err, time.Since(start))
		return trace, nil, err
	}
	trace.ok(booking.StageAR, time.Since(start))

	start = time.Now()
	window, err := timestd.Standardize(abs, query.TZ)
	if err != nil {
		trace.fail(booking.StageTS, err, time.Since(start))
		return trace, nil, err
	}
	trace.ok(booking.StageTS, time.Since(start))

	start = time.Now()
	catalog, err := o.Backend.Calendars(ctx)
	if err != nil {
		wrapped := booking.NewBackendUnavailableError(booking.StageTD, err)
		trace.fail(booking.StageTD, wrapped, time.Since(start))
		return trace, nil, wrapped
	}

	classified, err := difficulty.Classify(ctx, o.LLM, query, window.Duration, catalog)
	if err != nil {
		trace.fail(booking.StageTD, err, time.Since(start))
		return trace, nil, err
	}
	trace.ok(booking.StageTD, time.Since(start))

	var subtasks []booking.SubtaskSpec
	if classified.Type == booking.TaskSimple {
		trace.skip(booking.StageLD)
	} else {
		start = time.Now()
		decomposed, err := decompose.Decompose(ctx, o.LLM, classified)
		if err != nil {
			trace.fail(booking.StageLD, err, time.Since(start))
			return trace, nil, err
		}
		subtasks = decomposed.Subtasks
		trace.ok(booking.StageLD, time.Since(start))
	}

	start = time.Now()
	allotOpts := allotter.Options{
		ScheduleOptions:       o.ScheduleOptions,
		Constraints:           o.Constraints,
		HolidaysCalendarTitle: o.HolidaysCalendarTitle,
	}
	scheduled, err := allotter.Allot(ctx, o.Backend, window, classified, subtasks, allotOpts)
	if err != nil {
		trace.fail(booking.StageTA, err, time.Since(start))
		return trace, nil, err
	}
	trace.ok(booking.StageTA, time.Since(start))

	start = time.Now()
	if err := o.Creator.Create(ctx, scheduled); err != nil {
		trace.fail(booking.StageEC, err, time.Since(start))
		return trace, &scheduled, err
	}
	trace.ok(booking.StageEC, time.Since(start))

	return trace, &scheduled, nil
}
