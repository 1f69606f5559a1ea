package comic

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DateFormat parses post dates. The format is either a strftime
// specification such as "%B %d, %Y" or a Go reference layout.
type DateFormat struct {
	spec   string
	layout string
	loose  string
	loc    *time.Location
}

// looseReplacer lets day and month numbers be written without padding,
// as strptime allows. Day of year ("002") is left alone.
var looseReplacer = strings.NewReplacer("002", "002", "02", "2", "01", "1")

// NewDateFormat returns a DateFormat for spec. Dates are interpreted in loc,
// or in the local time zone if loc is nil.
func NewDateFormat(spec string, loc *time.Location) (DateFormat, error) {
	if strings.TrimSpace(spec) == "" {
		return DateFormat{}, fmt.Errorf("NewDateFormat: empty date format")
	}
	if loc == nil {
		loc = time.Local
	}
	layout := spec
	if strings.Contains(spec, "%") {
		var err error
		layout, err = strftime.Layout(spec)
		if err != nil {
			return DateFormat{}, fmt.Errorf("NewDateFormat: %q: %w", spec, err)
		}
	}
	return DateFormat{
		spec:   spec,
		layout: layout,
		loose:  looseReplacer.Replace(layout),
		loc:    loc,
	}, nil
}

// String returns the format as configured.
func (f DateFormat) String() string {
	return f.spec
}

// Location returns the time zone dates are interpreted in.
func (f DateFormat) Location() *time.Location {
	return f.loc
}

// Parse parses s.
func (f DateFormat) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(f.layout, s, f.loc)
	if err == nil {
		return t, nil
	}
	if f.loose != f.layout {
		if t, err2 := time.ParseInLocation(f.loose, s, f.loc); err2 == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Format formats t using the same specification.
func (f DateFormat) Format(t time.Time) string {
	if strings.Contains(f.spec, "%") {
		return strftime.Format(f.spec, t.In(f.loc))
	}
	return t.In(f.loc).Format(f.layout)
}
