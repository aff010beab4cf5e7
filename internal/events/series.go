package events

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/ecopatch/internal/calendar"
)

var (
	// ErrCursorRewind indicates a lookup for a date earlier than one already consumed.
	ErrCursorRewind = errors.New("events: date precedes cursor position")

	// ErrUnordered indicates series records that are not strictly increasing in date.
	ErrUnordered = errors.New("events: records not in increasing date order")
)

type Record struct {
	Date  calendar.Date
	Value float64
}

// Series is a time ordered sequence of dated values.
type Series struct {
	records []Record
}

// NewSeries sorts the records by date and rejects duplicate dates.
func NewSeries(records []Record) (Series, error) {
	rs := make([]Record, len(records))
	copy(rs, records)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })
	for i := 1; i < len(rs); i++ {
		if !rs[i-1].Date.Before(rs[i].Date) {
			return Series{}, fmt.Errorf("%w: duplicate %s", ErrUnordered, rs[i].Date)
		}
	}
	return Series{records: rs}, nil
}

func (s Series) Len() int { return len(s.records) }

func (s Series) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Option is a value that may be absent.
type Option struct {
	Value float64
	Valid bool
}

func Some(v float64) Option { return Option{Value: v, Valid: true} }

func (o Option) Or(fallback float64) float64 {
	if o.Valid {
		return o.Value
	}
	return fallback
}

// Cursor is a read position into a Series. The zero value points at the first record.
type Cursor struct {
	Index int
	Last  calendar.Date
}

// Advance moves the cursor past every record dated before d.
func Advance(s Series, c Cursor, d calendar.Date) (Cursor, error) {
	if !c.Last.IsZero() && d.Before(c.Last) {
		return c, fmt.Errorf("%w: %s < %s", ErrCursorRewind, d, c.Last)
	}
	for c.Index < len(s.records) && s.records[c.Index].Date.Before(d) {
		c.Index++
	}
	c.Last = d
	return c, nil
}

// At returns the record value when the cursor sits exactly on d.
func At(s Series, c Cursor, d calendar.Date) Option {
	if c.Index >= len(s.records) {
		return Option{}
	}
	r := s.records[c.Index]
	if r.Date != d {
		return Option{}
	}
	return Some(r.Value)
}
