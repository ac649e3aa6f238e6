package resource

import (
	"strings"

	"github.com/cachectl/cachectl/suggest"
	"github.com/pkg/errors"
)

// Existence declares whether a resource should exist.
type Existence int

// Valid existence values.
const (
	Present Existence = iota
	Absent
)

func (e Existence) String() string {
	switch e {
	case Present:
		return "present"
	case Absent:
		return "absent"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so existence values encode as
// their string form.
func (e Existence) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ParseExistence parses a user provided existence value. An empty string
// defaults to Present.
func ParseExistence(str string) (Existence, error) {
	switch strings.ToLower(str) {
	case "", "present":
		return Present, nil
	case "absent":
		return Absent, nil
	}
	if s := suggest.String(strings.ToLower(str), []string{"present", "absent"}); s != "" {
		return 0, errors.Errorf("invalid state %q, did you mean %q?", str, s)
	}
	return 0, errors.Errorf("invalid state %q, must be \"present\" or \"absent\"", str)
}
