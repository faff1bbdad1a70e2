package main

import "errors"

// Sentinel errors for CLI commands.
var (
	ErrInvalidArgs  = errors.New("invalid arguments")
	ErrReadInput    = errors.New("failed to read input")
	ErrWriteOutput  = errors.New("failed to write output")
	ErrBackup       = errors.New("failed to back up database")
	ErrDatabase     = errors.New("cannot open problem bank")
	ErrBatchFailed  = errors.New("batch finished with failures")
	ErrFallbackUsed = errors.New("no backend rendered the source")
)
