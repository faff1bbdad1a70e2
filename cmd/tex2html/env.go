package main

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process environment and the command runner used to
// probe pandoc.
type Environment struct {
	Now        func() time.Time
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Environ    func() []string
	NewRunID   func() string
	DotenvPath string // "" skips the dotenv file
	Runner     pipeline.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Getenv:     os.Getenv,
		Environ:    os.Environ,
		NewRunID:   uuid.NewString,
		DotenvPath: config.DefaultDotenvFile,
		Runner:     &pipeline.ExecRunner{},
	}
}
