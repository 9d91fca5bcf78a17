package core

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

type ElementType string

const (
	ElementButton   ElementType = "button"
	ElementInput    ElementType = "input"
	ElementCheckbox ElementType = "checkbox"
	ElementRadio    ElementType = "radio"
	ElementDropdown ElementType = "dropdown"
	ElementToggle   ElementType = "toggle"
)

type Style string

const (
	StylePrimary   Style = "primary"
	StyleSecondary Style = "secondary"
	StyleDanger    Style = "danger"
	StyleSuccess   Style = "success"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type StyleOptions struct {
	Style Style `json:"style,omitempty" validate:"omitempty,oneof=primary secondary danger success"`
	Size  Size  `json:"size,omitempty" validate:"omitempty,oneof=small medium large"`
}

// CustomElementConfig describes a synthetic UI widget built from the custom input dialog.
type CustomElementConfig struct {
	Type         ElementType  `json:"type" validate:"required,oneof=button input checkbox radio dropdown toggle"`
	Label        string       `json:"label" validate:"required"`
	StyleOptions StyleOptions `json:"styleOptions"`
}

// NewCustomItem builds the library item for a widget config. The caller
// assigns id and timestamp. Widgets are pinned on creation.
func NewCustomItem(cfg CustomElementConfig) (Item, error) {
	if cfg.StyleOptions.Style == "" {
		cfg.StyleOptions.Style = StylePrimary
	}
	if cfg.StyleOptions.Size == "" {
		cfg.StyleOptions.Size = SizeMedium
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return Item{}, fmt.Errorf("custom element: %w", err)
	}

	content, err := json.Marshal(cfg)
	if err != nil {
		return Item{}, fmt.Errorf("custom element: encode: %w", err)
	}

	preview := fmt.Sprintf(`<div class="custom-element %s %s %s">%s</div>`,
		cfg.Type, cfg.StyleOptions.Style, cfg.StyleOptions.Size, html.EscapeString(cfg.Label))

	return Item{
		Type:     TypeCustom,
		Content:  string(content),
		Preview:  preview,
		Title:    capitalize(string(cfg.Type)) + " - " + cfg.Label,
		IsPinned: true,
		Metadata: Metadata{
			Source: SourceCustom,
			Custom: &CustomMeta{
				ElementType: cfg.Type,
				Style:       cfg.StyleOptions.Style,
				Size:        cfg.StyleOptions.Size,
			},
		},
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
