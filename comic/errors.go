package comic

import (
	"fmt"
	"io/fs"
	"strings"
)

// MissingFileError is returned when a required content file is absent,
// including any marked variant of it.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing file %s", e.Path)
}

// Unwrap lets callers use errors.Is(err, fs.ErrNotExist).
func (e *MissingFileError) Unwrap() error {
	return fs.ErrNotExist
}

// InvalidDateError is returned when a post's date does not parse under the
// configured format.
type InvalidDateError struct {
	Post   string // post identifier
	Value  string // date text as authored
	Format string // configured format
	Err    error
}

func (e *InvalidDateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("post %s: missing post date", e.Post)
	}
	return fmt.Sprintf("post %s: date %q does not match format %q", e.Post, e.Value, e.Format)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// UnsupportedConfigError is returned for an info file whose structure cannot
// be handled, such as one with named sections.
type UnsupportedConfigError struct {
	Path     string
	Sections []string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("%s: sections are not supported (found %s)", e.Path, strings.Join(e.Sections, ", "))
}

// MissingKeyError is returned when an info file lacks a required key.
type MissingKeyError struct {
	Path string
	Key  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: missing %q", e.Path, e.Key)
}
