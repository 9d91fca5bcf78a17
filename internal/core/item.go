package core

import (
	"time"
)

// Item is a single copied, captured or synthesized artifact tracked by the library.
type Item struct {
	ID        string   `json:"id" validate:"required"`
	Type      Type     `json:"type" validate:"required,oneof=image text html code capture custom"`
	Content   string   `json:"content" validate:"required"`
	Preview   string   `json:"preview,omitempty"`
	Title     string   `json:"title" validate:"required"`
	Timestamp int64    `json:"timestamp"` // unix millis
	IsPinned  bool     `json:"isPinned"`
	Metadata  Metadata `json:"metadata"`
}

// Time returns the creation moment.
func (it Item) Time() time.Time {
	return time.UnixMilli(it.Timestamp)
}

// Source is shorthand for it.Metadata.Source.
func (it Item) Source() Source {
	return it.Metadata.Source
}

// Clone returns a copy that shares no pointers with it.
func (it Item) Clone() Item {
	it.Metadata = it.Metadata.Clone()
	return it
}

// Millis converts t to the Timestamp representation.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
