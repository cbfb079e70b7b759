package models

import "time"

// Page is an offset window. Size 0 means everything from From onwards.
type Page struct {
	From int
	Size int
}

func (p Page) Bounded() bool { return p.Size > 0 }

// Normalize truncates to whole seconds in UTC, the precision the API exchanges.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
