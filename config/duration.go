package config

import (
	"fmt"
	"strconv"
	"time"
)

// Duration is a time span in the config file. It is written either as a
// Go duration such as "10m" or as a whole number of seconds.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return d.D().String()
}

// MarshalText writes d as a Go duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText reads a duration or a number of seconds. Negative values
// are rejected and d is left unchanged on error.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	p, err := time.ParseDuration(s)
	if err != nil {
		n, nerr := strconv.ParseInt(s, 10, 64)
		if nerr != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		p = time.Duration(n) * time.Second
	}
	if p < 0 {
		return fmt.Errorf("negative duration %q", s)
	}
	*d = Duration(p)
	return nil
}
