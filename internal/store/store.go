// Package store reads the problem bank, a SQLite file with a problems table
// and optional topics and problem_topics tables.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Sentinel errors for store operations.
var (
	ErrNotFound    = errors.New("problem not found")
	ErrNoProblems  = errors.New("no problems table")
	ErrInvalidPath = errors.New("database path cannot be empty")
	ErrNoTopics    = errors.New("problem bank has no topic tables")
)

// AnyTopic matches every problem in List and Random.
const AnyTopic = "Any"

// Problem is one row of the problems table.
type Problem struct {
	ID     int64
	Year   *string
	Title  string
	Text   *string
	Answer *string
	Topics []string
}

// SQLiteStore is a handle on an open problem bank.
type SQLiteStore struct {
	db        *sql.DB
	hasTopics bool
}

// Open connects to the SQLite database at path and checks its layout.
// The file is never created: a missing file surfaces as ErrNoProblems.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	dsn := path
	if !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?mode=rw"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	tables, err := tableNames(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrNoProblems, path, err)
	}
	if !slices.Contains(tables, "problems") {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoProblems, path)
	}

	return &SQLiteStore{
		db:        db,
		hasTopics: slices.Contains(tables, "topics") && slices.Contains(tables, "problem_topics"),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HasTopics reports whether the bank carries topic tables.
func (s *SQLiteStore) HasTopics() bool {
	return s.hasTopics
}

// applyPragmas configures SQLite for a single local reader/writer.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const selectProblem = `SELECT p.id, p.year, p.problem, p.text, p.answer FROM problems p`

// Get returns the problem with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Problem, error) {
	row := s.db.QueryRowContext(ctx, selectProblem+` WHERE p.id = ?`, id)
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	if err := s.loadTopics(ctx, []*Problem{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the problems tagged with topic, ordered by id.
// An empty topic or AnyTopic lists every problem.
func (s *SQLiteStore) List(ctx context.Context, topic string) ([]*Problem, error) {
	query, args, err := s.filter(topic)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var problems []*Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("list problems: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	if err := s.loadTopics(ctx, problems); err != nil {
		return nil, err
	}
	return problems, nil
}

// Random returns one problem tagged with topic, chosen by SQLite.
func (s *SQLiteStore) Random(ctx context.Context, topic string) (*Problem, error) {
	query, args, err := s.filter(topic)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, query+` ORDER BY RANDOM() LIMIT 1`, args...)
	p, err := scanProblem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: topic %q", ErrNotFound, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("random problem: %w", err)
	}
	if err := s.loadTopics(ctx, []*Problem{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Topics returns the topic names in alphabetical order.
// A bank without topic tables has none.
func (s *SQLiteStore) Topics(ctx context.Context) ([]string, error) {
	if !s.hasTopics {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM topics ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list topics: %w", err)
		}
		topics = append(topics, name)
	}
	return topics, rows.Err()
}

// TextUpdate is one row rewrite for UpdateTexts.
type TextUpdate struct {
	ID   int64
	Text string
}

// UpdateTexts applies every update in a single transaction. If any row is
// missing or a write fails, nothing is changed.
func (s *SQLiteStore) UpdateTexts(ctx context.Context, updates []TextUpdate) (err error) {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE problems SET text = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.Text, u.ID)
		if err != nil {
			return fmt.Errorf("update problem %d: %w", u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update problem %d: %w", u.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, u.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// filter builds the problem query restricted to topic. A named topic on a
// bank without topic tables fails with ErrNoTopics.
func (s *SQLiteStore) filter(topic string) (string, []any, error) {
	if topic == "" || topic == AnyTopic {
		return selectProblem, nil, nil
	}
	if !s.hasTopics {
		return "", nil, fmt.Errorf("%w: cannot filter by topic %q", ErrNoTopics, topic)
	}
	return selectProblem + `
		JOIN problem_topics pt ON pt.problem_id = p.id
		JOIN topics t ON t.id = pt.topic_id
		WHERE t.name = ?`, []any{topic}, nil
}

// loadTopics fills Topics on each problem.
func (s *SQLiteStore) loadTopics(ctx context.Context, problems []*Problem) error {
	if !s.hasTopics || len(problems) == 0 {
		return nil
	}

	byID := make(map[int64]*Problem, len(problems))
	for _, p := range problems {
		byID[p.ID] = p
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.problem_id, t.name FROM problem_topics pt
		JOIN topics t ON t.id = pt.topic_id
		ORDER BY pt.problem_id, t.name`)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("load topics: %w", err)
		}
		if p, ok := byID[id]; ok {
			p.Topics = append(p.Topics, name)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProblem(row scanner) (*Problem, error) {
	var p Problem
	var year, text, answer sql.NullString
	if err := row.Scan(&p.ID, &year, &p.Title, &text, &answer); err != nil {
		return nil, err
	}
	p.Year = nullable(year)
	p.Text = nullable(text)
	p.Answer = nullable(answer)
	return &p, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
