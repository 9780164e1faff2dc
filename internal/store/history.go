package store

import (
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// CommandEntry is one append-only record of a processed command.
type CommandEntry struct {
	Command   string    `json:"command"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Interaction pairs a command with the raw response it produced.
type Interaction struct {
	Command   string    `json:"command"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Task is a scheduled command run periodically by the scheduler.
type Task struct {
	ID              int
	ChatID          string
	Command         string
	IntervalSeconds int
}

// HistoryStore persists command history, interactions and scheduled
// tasks in SQLite.
type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT,
			language TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT,
			response TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			command TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

// AddCommand appends one command history entry. Entries are never
// updated or individually deleted.
func (h *HistoryStore) AddCommand(command, language string) error {
	_, err := h.DB.Exec(`INSERT INTO commands (command, language) VALUES (?, ?)`, command, language)
	return err
}

// GetCommands returns the most recent entries in chronological order.
func (h *HistoryStore) GetCommands(limit int) ([]CommandEntry, error) {
	rows, err := h.DB.Query(
		`SELECT command, language, timestamp FROM commands ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CommandEntry
	for rows.Next() {
		var e CommandEntry
		if err := rows.Scan(&e.Command, &e.Language, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	// Reverse to chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, rows.Err()
}

// AddInteraction appends one command/response pair.
func (h *HistoryStore) AddInteraction(command, response string) error {
	_, err := h.DB.Exec(`INSERT INTO interactions (command, response) VALUES (?, ?)`, command, response)
	return err
}

// GetInteractions returns the most recent interactions in
// chronological order.
func (h *HistoryStore) GetInteractions(limit int) ([]Interaction, error) {
	rows, err := h.DB.Query(
		`SELECT command, response, timestamp FROM interactions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Interaction
	for rows.Next() {
		var e Interaction
		if err := rows.Scan(&e.Command, &e.Response, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, rows.Err()
}

// ClearHistory deletes all command and interaction records. This is the
// only supported deletion.
func (h *HistoryStore) ClearHistory() error {
	if _, err := h.DB.Exec(`DELETE FROM commands`); err != nil {
		return err
	}
	_, err := h.DB.Exec(`DELETE FROM interactions`)
	return err
}

func (h *HistoryStore) AddTask(chatID, command string, intervalSeconds int) error {
	_, err := h.DB.Exec(
		`INSERT INTO tasks (chat_id, command, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`,
		chatID, command, intervalSeconds)
	return err
}

// GetPendingTasks returns active tasks whose interval has elapsed since
// their last run.
func (h *HistoryStore) GetPendingTasks() ([]Task, error) {
	rows, err := h.DB.Query(`
		SELECT id, chat_id, command, interval_seconds
		FROM tasks
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ChatID, &t.Command, &t.IntervalSeconds); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (h *HistoryStore) UpdateTaskLastRun(id int) error {
	_, err := h.DB.Exec(`UPDATE tasks SET last_run = datetime('now') WHERE id = ?`, id)
	return err
}

func (h *HistoryStore) DeleteTask(chatID string, taskID int) error {
	_, err := h.DB.Exec(`DELETE FROM tasks WHERE chat_id = ? AND id = ?`, chatID, taskID)
	return err
}

func (h *HistoryStore) ClearTasks(chatID string) error {
	_, err := h.DB.Exec(`DELETE FROM tasks WHERE chat_id = ?`, chatID)
	return err
}
