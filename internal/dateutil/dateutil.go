// Package dateutil builds timestamp suffixes for database backups from
// token formats such as YYYYMMDD-HHmmss.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength caps the length of a format string.
const MaxDateFormatLength = 50

// DefaultBackupFormat names database backups, e.g. 20250131-142501.
const DefaultBackupFormat = "YYYYMMDD-HHmmss"

// dateTokens maps format tokens to Go layout parts, longest first. Tokens are case
// sensitive: MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common formats.
var DatePresets = map[string]string{
	"iso":    "YYYY-MM-DD",
	"backup": DefaultBackupFormat,
	"stamp":  "YYYY-MM-DD HH:mm:ss",
	"long":   "MMMM D, YYYY",
}

// ParseDateFormat turns a backup-name format into a Go time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss. Text inside
// brackets is copied verbatim, so [bak] stays "bak". Other characters pass
// through unchanged.
func ParseDateFormat(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: empty format", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			closing := strings.IndexByte(rest, ']')
			if closing < 0 {
				pos := len(format) - len(rest)
				return "", fmt.Errorf("%w: '[' at %d is never closed", ErrInvalidDateFormat, pos)
			}
			layout.WriteString(rest[1:closing])
			rest = rest[closing+1:]
			continue
		}
		if goFmt, n := matchToken(rest); n > 0 {
			layout.WriteString(goFmt)
			rest = rest[n:]
			continue
		}
		layout.WriteByte(rest[0])
		rest = rest[1:]
	}
	return layout.String(), nil
}

// matchToken returns the layout for the longest token prefixing s.
func matchToken(s string) (string, int) {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			return t.goFmt, len(t.token)
		}
	}
	return "", 0
}

// Format renders t with a format string or the name of a preset
// (case-insensitive). An empty format uses DefaultBackupFormat.
func Format(format string, t time.Time) (string, error) {
	if format == "" {
		format = DefaultBackupFormat
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}

	goFmt, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
