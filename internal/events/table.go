package events

import (
	"fmt"

	"github.com/san-kum/ecopatch/internal/calendar"
)

type Kind int

const (
	Irrigation Kind = iota
	FertilizerNO3
	FertilizerNH4
	PH
)

func (k Kind) String() string {
	switch k {
	case Irrigation:
		return "irrigation"
	case FertilizerNO3:
		return "fertilizer_NO3"
	case FertilizerNH4:
		return "fertilizer_NH4"
	case PH:
		return "PH"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Irrigation, FertilizerNO3, FertilizerNH4, PH} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("events: unknown series kind %q", s)
}

// Track pairs a series with its cursor. A disabled track behaves as if absent.
type Track struct {
	Series   Series
	Cursor   Cursor
	Disabled bool
}

// Table holds the dated input tracks of a single patch. It is not safe for
// concurrent use; a patch-day owns its table exclusively.
type Table struct {
	tracks map[Kind]*Track
}

func NewTable() *Table {
	return &Table{tracks: make(map[Kind]*Track)}
}

func (t *Table) Set(kind Kind, s Series) {
	t.tracks[kind] = &Track{Series: s}
}

func (t *Table) Disable(kind Kind) {
	if tr, ok := t.tracks[kind]; ok {
		tr.Disabled = true
	}
}

func (t *Table) Track(kind Kind) (*Track, bool) {
	if t == nil {
		return nil, false
	}
	tr, ok := t.tracks[kind]
	if !ok || tr.Disabled {
		return nil, false
	}
	return tr, true
}

// Lookup advances the cursor of kind to d and reports the value recorded for d.
// tracked is false when the patch has no usable series of that kind.
func (t *Table) Lookup(kind Kind, d calendar.Date) (opt Option, tracked bool, err error) {
	tr, ok := t.Track(kind)
	if !ok {
		return Option{}, false, nil
	}
	c, err := Advance(tr.Series, tr.Cursor, d)
	if err != nil {
		return Option{}, true, fmt.Errorf("%s: %w", kind, err)
	}
	tr.Cursor = c
	return At(tr.Series, c, d), true, nil
}

// ValueOr returns the recorded value for d, zero when the series has no
// record that day, or fallback when the patch has no series of that kind.
func (t *Table) ValueOr(kind Kind, d calendar.Date, fallback float64) (float64, error) {
	opt, tracked, err := t.Lookup(kind, d)
	if err != nil {
		return 0, err
	}
	if !tracked {
		return fallback, nil
	}
	return opt.Or(0), nil
}
