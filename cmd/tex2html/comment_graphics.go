package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-tex2html/internal/dateutil"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/pipeline"
	"github.com/alnah/go-tex2html/internal/store"
)

// runCommentGraphics comments out \includegraphics lines in every problem
// text and writes the changed rows back in one transaction. The database file is copied to
// <path>.bak-<timestamp> first unless --no-backup or --dry-run is given.
func runCommentGraphics(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseCommentGraphicsFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: comment-graphics takes no arguments, got %v", ErrInvalidArgs, positional)
	}

	a, err := newApp(&f.common, env)
	if err != nil {
		return err
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	problems, err := st.List(ctx, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	var changes []store.TextUpdate
	for _, p := range problems {
		if p.Text == nil {
			continue
		}
		if text, changed := pipeline.CommentGraphics(*p.Text); changed {
			changes = append(changes, store.TextUpdate{ID: p.ID, Text: text})
		}
	}

	if f.dryRun {
		if !a.quiet {
			for _, c := range changes {
				fmt.Fprintf(env.Stdout, "Would update problem %d\n", c.ID)
			}
			fmt.Fprintf(env.Stdout, "%d of %d problems reference graphics\n", len(changes), len(problems))
		}
		return nil
	}

	if len(changes) > 0 && !f.noBackup {
		backup, err := backupDatabase(a.cfg.Database.Path, a.cfg.Database.BackupFormat, env)
		if err != nil {
			return err
		}
		if !a.quiet {
			fmt.Fprintf(env.Stdout, "Backup: %s\n", backup)
		}
	}

	if err := st.UpdateTexts(ctx, changes); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	if !a.quiet {
		for _, c := range changes {
			fmt.Fprintf(env.Stdout, "Updated problem %d\n", c.ID)
		}
	}

	if !a.quiet {
		fmt.Fprintf(env.Stdout, "%d of %d problems updated\n", len(changes), len(problems))
	}
	return nil
}

// backupDatabase copies the bank to path.bak-<timestamp> and returns the
// copy's path.
func backupDatabase(path, format string, env *Environment) (string, error) {
	suffix, err := dateutil.Format(format, env.Now())
	if err != nil {
		return "", err
	}
	backup := path + ".bak-" + suffix
	if err := fileutil.CopyFile(path, backup); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackup, err)
	}
	return backup, nil
}
