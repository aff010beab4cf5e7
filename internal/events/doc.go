// Package events provides dated input series (irrigation, fertilizer, soil pH)
// read through explicit forward-only cursors.
//
// A [Series] is immutable once built. Its read position lives in a [Cursor]
// value, and advancing is a pure function of (cursor, date):
//
//	c, err := events.Advance(series, c, today)
//	opt := events.At(series, c, today)
//
// A [Table] keeps one cursor per series for a patch. Dates must be presented in
// non-decreasing order; going backwards returns [ErrCursorRewind].
package events
