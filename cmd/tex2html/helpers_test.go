package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fixedNow is the clock used by test environments.
var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// testBankSchema holds three problems: one with a figure, one without an
// answer, one tagged only with Probability.
const testBankSchema = `
CREATE TABLE topics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL
);
CREATE TABLE problems (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    year TEXT,
    problem TEXT NOT NULL,
    text TEXT NOT NULL,
    answer TEXT
);
CREATE TABLE problem_topics (
    problem_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL,
    PRIMARY KEY (problem_id, topic_id)
);
INSERT INTO topics (name) VALUES ('Markov chains'), ('Probability');
INSERT INTO problems (year, problem, text, answer) VALUES
    ('2019', 'Dice & co', 'Roll \textbf{two} dice.' || char(10) || '\includegraphics{figures/dice.png}', '1/6'),
    (NULL, 'Chain', 'A chain on $\{1,2\}$.', NULL),
    ('2021', 'Coins', 'Flip a coin.', 'heads');
INSERT INTO problem_topics (problem_id, topic_id) VALUES (1, 2), (2, 1), (2, 2), (3, 2);
`

// testEnv is an Environment with captured output and no process state.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
}

// newTestEnv returns an environment isolated from the process: no real
// environment variables, no dotenv file, a fixed clock and run ID.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   map[string]string{},
	}
	te.Environment = &Environment{
		Now:      func() time.Time { return fixedNow },
		Stdin:    strings.NewReader(""),
		Stdout:   te.stdout,
		Stderr:   te.stderr,
		Getenv:   func(k string) string { return te.vars[k] },
		Environ:  te.environ,
		NewRunID: func() string { return "run-1" },
		Runner:   &fakeRunner{stdout: "pandoc 3.1.9\nFeatures: +server\n"},
	}
	return te
}

func (te *testEnv) environ() []string {
	out := make([]string, 0, len(te.vars))
	for k, v := range te.vars {
		out = append(out, k+"="+v)
	}
	return out
}

// run calls runMain with "tex2html" prepended.
func (te *testEnv) run(args ...string) int {
	return runMain(append([]string{"tex2html"}, args...), te.Environment)
}

// fakeRunner answers every command with fixed output.
type fakeRunner struct {
	mu     sync.Mutex
	stdout string
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ io.Reader, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.stdout, "", f.err
}

// newTestBank writes a problem bank into a temp dir and returns its path.
func newTestBank(t *testing.T) string {
	t.Helper()
	return newTestBankWith(t, testBankSchema)
}

// newTestBankWith is newTestBank with a custom schema.
func newTestBankWith(t *testing.T, schema string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "problems.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("setup schema: %v", err)
	}
	return path
}

// problemText reads the text column of one problem.
func problemText(t *testing.T, dbPath string, id int64) string {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var text string
	if err := db.QueryRow(`SELECT text FROM problems WHERE id = ?`, id).Scan(&text); err != nil {
		t.Fatalf("query problem %d: %v", id, err)
	}
	return text
}

func assertContains(t *testing.T, label, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("%s should contain %q, got:\n%s", label, want, got)
		}
	}
}
