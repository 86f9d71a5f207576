package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Qualifier selects which instant of an interval event a moment refers to.
type Qualifier int

const (
	// QualifierNone picks the single instant or the start of an interval.
	QualifierNone Qualifier = iota
	// QualifierMiddle picks the midpoint of an interval.
	QualifierMiddle
	// QualifierEnd picks the end of an interval.
	QualifierEnd
)

// Moment suffixes recognized by SplitMoment.
const (
	suffixMiddle = "_middle"
	suffixEnd    = "_end"
)

// ErrUnknownMoment is returned for moment names outside the supported set.
var ErrUnknownMoment = errors.New("unknown moment")

// Moments lists every moment name an alarm may use, sorted.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Moments = []string{
	"blue_hour",
	"blue_hour_end",
	"blue_hour_middle",
	"dawn",
	"dusk",
	"golden_hour",
	"golden_hour_end",
	"golden_hour_middle",
	"solar_noon",
	"sunrise",
	"sunset",
	"twilight",
	"twilight_end",
	"twilight_middle",
}

// String returns the suffix-free name of the qualifier.
func (q Qualifier) String() string {
	switch q {
	case QualifierMiddle:
		return "middle"
	case QualifierEnd:
		return "end"
	default:
		return "none"
	}
}

// SplitMoment separates a moment such as "golden_hour_middle" into its base
// event and qualifier. Names without a suffix yield QualifierNone.
func SplitMoment(moment string) (string, Qualifier) {
	switch {
	case strings.HasSuffix(moment, suffixMiddle):
		return strings.TrimSuffix(moment, suffixMiddle), QualifierMiddle
	case strings.HasSuffix(moment, suffixEnd):
		return strings.TrimSuffix(moment, suffixEnd), QualifierEnd
	default:
		return moment, QualifierNone
	}
}

// IsMoment reports whether name is a supported moment.
func IsMoment(name string) bool {
	_, found := slices.BinarySearch(Moments, name)

	return found
}

// ValidateMoment accepts the empty string (fixed clock time) or a known moment.
func ValidateMoment(moment string) error {
	if moment == "" || IsMoment(moment) {
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownMoment, moment)
}
