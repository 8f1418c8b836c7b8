package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidArgument is matched by every InvalidArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a user-supplied value outside its allowed set.
type InvalidArgumentError struct {
	// Name is the argument name as the user knows it (e.g. "size").
	Name string

	// Value is the rejected input, verbatim.
	Value string

	// Allowed lists the accepted spellings. Empty when the rule is not an enumeration.
	Allowed []string

	// Reason is an optional free-form explanation.
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Reason)
	case len(e.Allowed) > 0:
		return fmt.Sprintf("invalid %s %q: must be one of %s", e.Name, e.Value, strings.Join(e.Allowed, "|"))
	default:
		return fmt.Sprintf("invalid %s %q", e.Name, e.Value)
	}
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Size is the collage grid edge length.
type Size int

const (
	Size3  Size = 3
	Size4  Size = 4
	Size5  Size = 5
	Size10 Size = 10
)

// Sizes lists every supported size in ascending order.
var Sizes = []Size{Size3, Size4, Size5, Size10}

// ParseSize parses one of "3", "4", "5" or "10".
func ParseSize(s string) (Size, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err == nil {
		for _, size := range Sizes {
			if Size(n) == size {
				return size, nil
			}
		}
	}
	return 0, &InvalidArgumentError{Name: "size", Value: s, Allowed: sizeNames()}
}

// Grid renders the size the way the remote service expects it, e.g. "4x4".
func (s Size) Grid() string {
	return fmt.Sprintf("%dx%d", int(s), int(s))
}

// String returns the CLI spelling of the size.
func (s Size) String() string {
	return strconv.Itoa(int(s))
}

func sizeNames() []string {
	names := make([]string, len(Sizes))
	for i, s := range Sizes {
		names[i] = s.String()
	}
	return names
}

// Period is the listening-history window, in its CLI spelling.
type Period string

const (
	Period7Days    Period = "7d"
	Period1Month   Period = "1m"
	Period3Months  Period = "3m"
	Period6Months  Period = "6m"
	Period12Months Period = "12m"
	PeriodOverall  Period = "all"
)

// Periods lists every supported period from shortest to longest.
var Periods = []Period{Period7Days, Period1Month, Period3Months, Period6Months, Period12Months, PeriodOverall}

// ParsePeriod parses one of "7d", "1m", "3m", "6m", "12m" or "all".
// Anything else is rejected rather than treated as "all".
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.TrimSpace(s))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	names := make([]string, len(Periods))
	for i, known := range Periods {
		names[i] = string(known)
	}
	return "", &InvalidArgumentError{Name: "time", Value: s, Allowed: names}
}

// Token returns the period in the remote service vocabulary ("7day", "overall", ...).
// It returns an empty string for values that did not come from ParsePeriod.
func (p Period) Token() string {
	switch p {
	case Period7Days:
		return "7day"
	case Period1Month:
		return "1month"
	case Period3Months:
		return "3month"
	case Period6Months:
		return "6month"
	case Period12Months:
		return "12month"
	case PeriodOverall:
		return "overall"
	default:
		return ""
	}
}

// ParseFlag parses a boolean CLI flag. The documented spellings are "t" and "f";
// anything strconv.ParseBool understands is accepted as well.
func ParseFlag(name, s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &InvalidArgumentError{Name: name, Value: s, Allowed: []string{"t", "f"}}
	}
	return b, nil
}

// CollageRequest describes a single collage to be rendered by the remote service.
//
// A CollageRequest built through NewCollageRequest always carries a supported
// Size and Period and a non-empty User.
type CollageRequest struct {
	// User is the last.fm username, verbatim.
	User string

	// Size is the grid edge length.
	Size Size

	// Period is the listening-history window.
	Period Period

	// ShowCaption asks the service to print album/artist names on the tiles.
	ShowCaption bool

	// ShowPlaycount asks the service to print play counts on the tiles.
	ShowPlaycount bool
}

// NewCollageRequest validates raw CLI values and builds a CollageRequest.
func NewCollageRequest(user, size, period string, showCaption, showPlaycount bool) (*CollageRequest, error) {
	if strings.TrimSpace(user) == "" {
		return nil, &InvalidArgumentError{Name: "user", Value: user, Reason: "must not be empty"}
	}

	sz, err := ParseSize(size)
	if err != nil {
		return nil, err
	}

	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	return &CollageRequest{
		User:          user,
		Size:          sz,
		Period:        p,
		ShowCaption:   showCaption,
		ShowPlaycount: showPlaycount,
	}, nil
}

// String summarizes the request for logs and UI.
func (r *CollageRequest) String() string {
	return fmt.Sprintf("%s %s %s", r.User, r.Size.Grid(), r.Period.Token())
}
