// Package eventcreator implements EventCreator (EC): the side-effecting
// leaf that posts scheduled tasks to the calendar backend and persists
// their id/event mapping, plus the cascade-delete operations over that
// persisted state.
package eventcreator

import (
	"context"
	"errors"
	"fmt"

	"github.com/javiermolinar/chronoscribe/internal/booking"
	"github.com/javiermolinar/chronoscribe/internal/calbackend"
	"github.com/javiermolinar/chronoscribe/internal/db"
)

// Creator wires the calendar backend and the persistence store together.
type Creator struct {
	backend *calbackend.Client
	store   *db.Store
}

// New builds a Creator.
func New(backend *calbackend.Client, store *db.Store) *Creator {
	return &Creator{backend: backend, store: store}
}

// Create posts task's backend event(s) and persists the resulting rows.
// A simple task posts one event. A complex task posts no event for the
// parent and one per subtask; a child POST failure does not abort the
// remaining children — the parent row and any already-created children
// are kept, and the failure is reported via booking.KindECPartial.
func (c *Creator) Create(ctx context.Context, task booking.ScheduledTask) error {
	if task.Type == booking.TaskSimple {
		return c.createSimple(ctx, task)
	}
	return c.createComplex(ctx, task)
}

func (c *Creator) createSimple(ctx context.Context, task booking.ScheduledTask) error {
	note := booking.Note(task.ID, nil)
	resp, err := c.backend.AddEvent(ctx, calbackend.AddEventRequest{
		Title:      task.Title,
		StartISO:   task.Slot.Start.Format("2006-01-02T15:04:05Z07:00"),
		EndISO:     task.Slot.End.Format("2006-01-02T15:04:05Z07:00"),
		Notes:      &note,
		CalendarID: task.CalendarID,
	})
	if err != nil {
		return classifyBackendError(booking.StageEC, err)
	}

	persisted := booking.PersistedTask{ID: task.ID.String(), Title: task.Title}
	mapping := booking.EventMapping{TaskID: task.ID.String(), BackendEventID: resp.ID, CalendarID: task.CalendarID}
	if err := c.store.CreateTaskWithEvent(ctx, persisted, mapping); err != nil {
		// Best-effort cleanup: without a tasks/event_map row, this event
		// would otherwise be untrackable and undeletable from now on.
		_, _ = c.backend.DeleteEvent(ctx, resp.ID)
		return fmt.Errorf("persisting task %s: %w", task.ID, err)
	}
	return nil
}

func (c *Creator) createComplex(ctx context.Context, task booking.ScheduledTask) error {
	parentIDStr := task.ID.String()
	if err := c.store.CreateTask(ctx, booking.PersistedTask{ID: parentIDStr, Title: task.Title}); err != nil {
		return fmt.Errorf("persisting parent task %s: %w", task.ID, err)
	}

	succeeded := 0
	for _, child := range task.Subtasks {
		note := booking.Note(child.ID, &task.ID)
		resp, err := c.backend.AddEvent(ctx, calbackend.AddEventRequest{
			Title:      child.Title,
			StartISO:   child.Slot.Start.Format("2006-01-02T15:04:05Z07:00"),
			EndISO:     child.Slot.End.Format("2006-01-02T15:04:05Z07:00"),
			Notes:      &note,
			CalendarID: task.CalendarID,
		})
		if err != nil {
			continue
		}

		parentID := parentIDStr
		persisted := booking.PersistedTask{ID: child.ID.String(), Title: child.Title, ParentID: &parentID}
		mapping := booking.EventMapping{TaskID: child.ID.String(), BackendEventID: resp.ID, CalendarID: task.CalendarID}
		if err := c.store.CreateTaskWithEvent(ctx, persisted, mapping); err != nil {
			// The backend event now has no tasks/event_map row to track it;
			// without this, DeleteByTaskID/DeleteAll could never find it.
			_, _ = c.backend.DeleteEvent(ctx, resp.ID)
			continue
		}
		succeeded++
	}

	if succeeded < len(task.Subtasks) {
		return booking.NewECPartial(succeeded, len(task.Subtasks))
	}
	return nil
}

// DeleteByTaskID deletes one task. If it is a parent, every child's
// backend event is deleted first, then the children and parent rows.
// Backend "not found" is treated as a successful, idempotent delete.
func (c *Creator) DeleteByTaskID(ctx context.Context, taskID string) error {
	children, err := c.store.ListChildren(ctx, taskID)
	if err != nil {
		return fmt.Errorf("listing children of %s: %w", taskID, err)
	}

	for _, child := range children {
		if err := c.deleteOneWithEvent(ctx, child.ID); err != nil {
			return err
		}
	}
	return c.deleteOneWithEvent(ctx, taskID)
}

// DeleteByParentID deletes only the children of parentID, leaving the
// parent row intact.
func (c *Creator) DeleteByParentID(ctx context.Context, parentID string) error {
	children, err := c.store.ListChildren(ctx, parentID)
	if err != nil {
		return fmt.Errorf("listing children of %s: %w", parentID, err)
	}
	for _, child := range children {
		if err := c.deleteOneWithEvent(ctx, child.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every task and event mapping. Callers must obtain
// the confirmation sentinel themselves (the CLI layer owns that prompt).
func (c *Creator) DeleteAll(ctx context.Context) error {
	tasks, err := c.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	for _, t := range tasks {
		mapping, err := c.store.GetEventMapping(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("fetching event mapping for %s: %w", t.ID, err)
		}
		if mapping == nil {
			continue
		}
		if _, err := c.backend.DeleteEvent(ctx, mapping.BackendEventID); err != nil && !errors.Is(err, calbackend.ErrRejected) {
			return classifyBackendError(booking.StageEC, err)
		}
	}
	return c.store.DeleteAll(ctx)
}

func (c *Creator) deleteOneWithEvent(ctx context.Context, taskID string) error {
	mapping, err := c.store.GetEventMapping(ctx, taskID)
	if err != nil {
		return fmt.Errorf("fetching event mapping for %s: %w", taskID, err)
	}
	if mapping != nil {
		if _, err := c.backend.DeleteEvent(ctx, mapping.BackendEventID); err != nil {
			if !errors.Is(err, calbackend.ErrRejected) {
				return classifyBackendError(booking.StageEC, err)
			}
		}
	}

	if err := c.store.DeleteTaskRow(ctx, taskID); err != nil && !errors.Is(err, db.ErrTaskNotFound) {
		return fmt.Errorf("deleting task row %s: %w", taskID, err)
	}
	return nil
}

func classifyBackendError(stage booking.Stage, err error) error {
	if errors.Is(err, calbackend.ErrUnavailable) {
		return booking.NewBackendUnavailableError(stage, err)
	}
	return err
}
