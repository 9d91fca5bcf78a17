package library

import (
	"context"

	"github.com/its-jojoo/otterboard/internal/core"
)

// CreateCustomElement builds a pinned widget item from cfg and adds it.
func (m *Manager) CreateCustomElement(ctx context.Context, cfg core.CustomElementConfig) (core.Item, error) {
	it, err := core.NewCustomItem(cfg)
	if err != nil {
		return core.Item{}, err
	}
	return m.Add(ctx, it)
}
