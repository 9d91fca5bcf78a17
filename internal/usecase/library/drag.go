package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/its-jojoo/otterboard/internal/core"
)

// DragMIME is the data-transfer type a drag payload travels under.
const DragMIME = "application/json"

const dragKind = "resource"

var (
	ErrNotFound       = errors.New("item not found")
	ErrInvalidPayload = errors.New("invalid drag payload")
)

// DragPayload is what a host carries between BeginDrag and Drop.
type DragPayload struct {
	Kind string `json:"type"`
	ID   string `json:"id"`
}

func (p DragPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

func DecodeDragPayload(b []byte) (DragPayload, error) {
	var p DragPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Kind != dragKind || p.ID == "" {
		return DragPayload{}, ErrInvalidPayload
	}
	return p, nil
}

// Point is a drop location in canvas coordinates.
type Point struct {
	X, Y float64
}

// DropTarget is the canvas host that receives dropped items.
type DropTarget interface {
	Place(ctx context.Context, it core.Item, at Point) error
}

// BeginDrag starts a drag of the item with id.
func (m *Manager) BeginDrag(id string) (DragPayload, error) {
	if _, ok := m.Get(id); !ok {
		return DragPayload{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return DragPayload{Kind: dragKind, ID: id}, nil
}

// Drop resolves payload against the collection and hands the item to target.
func (m *Manager) Drop(ctx context.Context, p DragPayload, at Point, target DropTarget) error {
	if p.Kind != dragKind || p.ID == "" {
		return ErrInvalidPayload
	}
	it, ok := m.Get(p.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	if target == nil {
		return errors.New("drop: no target")
	}
	return target.Place(ctx, it, at)
}
