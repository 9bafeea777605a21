package task

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/timeflowapp/timeflow/clock"
)

// ErrStorageUnavailable wraps failures to open or prepare the durable
// store. The shell reports it and keeps unsaved input intact.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrTaskNotFound is returned by Task for unknown ids.
var ErrTaskNotFound = errors.New("task not found")

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	start_time       TEXT NOT NULL,
	end_time         TEXT NOT NULL,
	date             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	is_important     INTEGER NOT NULL DEFAULT 0,
	reminder_minutes INTEGER,
	recurring        TEXT NOT NULL DEFAULT '',
	color            TEXT NOT NULL DEFAULT '',
	attachment_data  TEXT NOT NULL DEFAULT '',
	forked_from      TEXT NOT NULL DEFAULT '',
	is_completed     INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(date);
CREATE INDEX IF NOT EXISTS idx_tasks_start_time ON tasks(start_time);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore persists tasks and settings in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the tables and indexes exist. The caller is responsible for
// calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %v", ErrStorageUnavailable, dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrStorageUnavailable, err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveTask validates and upserts t. Missing ids are generated;
// UpdatedAt is always refreshed, CreatedAt set only when absent. The
// write is a single statement, so a failed save leaves no partial row.
func (s *SQLiteStore) SaveTask(t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now().UTC()
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		// Preserve the original creation stamp on edits that did not
		// carry it through.
		var created time.Time
		err := s.db.QueryRow(`SELECT created_at FROM tasks WHERE id = ?`, t.ID).Scan(&created)
		switch {
		case err == sql.ErrNoRows:
			t.CreatedAt = now
		case err != nil:
			return fmt.Errorf("read created_at: %w", err)
		default:
			t.CreatedAt = created
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks
			(id, title, start_time, end_time, date, description, is_important,
			 reminder_minutes, recurring, color, attachment_data, forked_from,
			 is_completed, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, start_time=excluded.start_time,
			end_time=excluded.end_time, date=excluded.date,
			description=excluded.description, is_important=excluded.is_important,
			reminder_minutes=excluded.reminder_minutes, recurring=excluded.recurring,
			color=excluded.color, attachment_data=excluded.attachment_data,
			forked_from=excluded.forked_from, is_completed=excluded.is_completed,
			updated_at=excluded.updated_at`,
		t.ID, t.Title, t.StartTime, t.EndTime, t.Date.String(), t.Description,
		boolInt(t.IsImportant), nullInt(t.ReminderMinutes), string(t.Recurring),
		string(t.Color), t.AttachmentData, t.ForkedFrom, boolInt(t.IsCompleted),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Task retrieves a task by id.
func (s *SQLiteStore) Task(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT * FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return t, err
}

// TasksByDate returns the base occurrences stored on date plus virtual
// occurrences projected by recurring tasks based on earlier dates. A
// standalone copy forked from a recurring task replaces that task's
// projection on its date, so forking never shows the task twice.
func (s *SQLiteStore) TasksByDate(date clock.Date) ([]Occurrence, error) {
	direct, err := s.tasksWhere(`date = ?`, date.String())
	if err != nil {
		return nil, err
	}
	recurring, err := s.tasksWhere(`recurring != '' AND date != ?`, date.String())
	if err != nil {
		return nil, err
	}

	forked := make(map[string]struct{})
	out := make([]Occurrence, 0, len(direct))
	for _, t := range direct {
		if t.ForkedFrom != "" {
			forked[t.ForkedFrom] = struct{}{}
		}
		out = append(out, Occurrence{Task: *t})
	}
	for _, occ := range ExpandVirtual(recurring, date) {
		if _, ok := forked[occ.OriginalID]; ok {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

func (s *SQLiteStore) tasksWhere(cond string, args ...any) ([]*Task, error) {
	rows, err := s.db.Query(`SELECT * FROM tasks WHERE `+cond, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task by id. Deleting an unknown id is a no-op.
func (s *SQLiteStore) DeleteTask(id string) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// TaskTitles returns distinct titles in creation order, oldest first.
func (s *SQLiteStore) TaskTitles() ([]string, error) {
	rows, err := s.db.Query(`SELECT title FROM tasks ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// Setting reads one setting value into out (a pointer), reporting
// whether the key existed. Values are stored as JSON.
func (s *SQLiteStore) Setting(key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// SetSetting stores one setting value as JSON, insert-or-replace.
func (s *SQLiteStore) SetSetting(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// Settings returns the typed settings view, with defaults for any key
// never written.
func (s *SQLiteStore) Settings() (Settings, error) {
	out := DefaultSettings()
	fields := map[string]any{
		SettingTheme:                  &out.Theme,
		SettingNotificationsEnabled:   &out.NotificationsEnabled,
		SettingDefaultReminderMinutes: &out.DefaultReminderMinutes,
		SettingTimelineDensity:        &out.TimelineDensity,
		SettingHasSeenOnboarding:      &out.HasSeenOnboarding,
	}
	for key, dst := range fields {
		if _, err := s.Setting(key, dst); err != nil {
			return out, err
		}
	}
	return out, nil
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*Task, error) {
	var t Task
	var date, recurring, color string
	var important, completed int
	var reminder sql.NullInt64

	err := sc.Scan(
		&t.ID, &t.Title, &t.StartTime, &t.EndTime, &date, &t.Description,
		&important, &reminder, &recurring, &color, &t.AttachmentData,
		&t.ForkedFrom, &completed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Date, err = clock.ParseDate(date); err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	t.IsImportant = important != 0
	t.IsCompleted = completed != 0
	t.Recurring = Recurrence(recurring)
	t.Color = Color(color)
	if reminder.Valid {
		v := int(reminder.Int64)
		t.ReminderMinutes = &v
	}
	return &t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
