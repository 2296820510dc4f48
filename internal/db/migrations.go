package db

import "fmt"

// migrate creates the two tables the core persists to: tasks and
// event_map, exactly as pinned for the calendar backend's reconciliation
// contract.
func (s *Store) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id        TEXT PRIMARY KEY,
			title     TEXT NOT NULL,
			parent_id TEXT NULL REFERENCES tasks(id)
		);

		CREATE TABLE IF NOT EXISTS event_map (
			task_id          TEXT PRIMARY KEY REFERENCES tasks(id),
			backend_event_id TEXT NOT NULL,
			calendar_id      TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
