// Package envfile reads, creates and rewrites .env files.
//
// A .env file holds one KEY=VALUE pair per line. Blank lines are ignored
// when reading; the value is everything after the first "=".
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrMissingDelimiter is wrapped by ParseError for a line without "=".
	ErrMissingDelimiter = errors.New("missing '=' delimiter")

	// ErrExists is returned by Create when the path already exists.
	// Errors wrapping it also match fs.ErrExist.
	ErrExists = errors.New("file already exists")
)

// EnvVar is a single KEY=VALUE entry.
type EnvVar struct {
	Key   string
	Value string
}

// String returns the entry in KEY=VALUE form.
func (v EnvVar) String() string {
	return v.Key + "=" + v.Value
}

// ParseError reports a malformed line.
type ParseError struct {
	Line int    // 1-based line number
	Text string // offending line
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse splits data into entries in file order. Duplicate keys are kept.
func Parse(data []byte) ([]EnvVar, error) {
	var vars []EnvVar
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Line: i + 1, Text: line, Err: ErrMissingDelimiter}
		}
		vars = append(vars, EnvVar{Key: key, Value: value})
	}
	return vars, nil
}

// Create creates an empty file at path. It fails with ErrExists if
// anything already exists there.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %w", ErrExists, err)
		}
		return fmt.Errorf("create env file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close env file: %w", err)
	}
	return nil
}
