package core

import (
	"encoding/json"
)

// Metadata is keyed by Source and carries at most one variant.
// Image is used by image and capture items, Code by code items and
// Custom by synthesized widgets.
type Metadata struct {
	Source Source

	Image  *ImageMeta
	Code   *CodeMeta
	Custom *CustomMeta
}

type ImageMeta struct {
	Width    int
	Height   int
	MimeType string
}

type CodeMeta struct {
	Language string
}

type CustomMeta struct {
	ElementType ElementType
	Style       Style
	Size        Size
}

// flatMetadata is the persisted shape: a single flat object.
type flatMetadata struct {
	Source      Source      `json:"source,omitempty" yaml:"source,omitempty"`
	Width       int         `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int         `json:"height,omitempty" yaml:"height,omitempty"`
	MimeType    string      `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Language    string      `json:"language,omitempty" yaml:"language,omitempty"`
	ElementType ElementType `json:"elementType,omitempty" yaml:"elementType,omitempty"`
	Style       Style       `json:"style,omitempty" yaml:"style,omitempty"`
	Size        Size        `json:"size,omitempty" yaml:"size,omitempty"`
}

func (m Metadata) flatten() flatMetadata {
	f := flatMetadata{Source: m.Source}
	switch {
	case m.Image != nil:
		f.Width, f.Height, f.MimeType = m.Image.Width, m.Image.Height, m.Image.MimeType
	case m.Code != nil:
		f.Language = m.Code.Language
	case m.Custom != nil:
		f.ElementType, f.Style, f.Size = m.Custom.ElementType, m.Custom.Style, m.Custom.Size
	}
	return f
}

func (f flatMetadata) unflatten() Metadata {
	m := Metadata{Source: f.Source}
	switch {
	case f.ElementType != "" || f.Style != "" || f.Size != "":
		m.Custom = &CustomMeta{ElementType: f.ElementType, Style: f.Style, Size: f.Size}
	case f.Width != 0 || f.Height != 0 || f.MimeType != "":
		m.Image = &ImageMeta{Width: f.Width, Height: f.Height, MimeType: f.MimeType}
	case f.Language != "":
		m.Code = &CodeMeta{Language: f.Language}
	}
	return m
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.flatten())
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Metadata{}
		return nil
	}
	var f flatMetadata
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*m = f.unflatten()
	return nil
}

func (m Metadata) MarshalYAML() (any, error) {
	return m.flatten(), nil
}

// Variants reports how many variant pointers are set; valid metadata has at most one.
func (m Metadata) Variants() int {
	n := 0
	if m.Image != nil {
		n++
	}
	if m.Code != nil {
		n++
	}
	if m.Custom != nil {
		n++
	}
	return n
}

// Clone returns a deep copy of m. Variants with no fields set are dropped,
// since the flat encoding cannot tell them apart from an absent variant.
func (m Metadata) Clone() Metadata {
	out := Metadata{Source: m.Source}
	if m.Image != nil && *m.Image != (ImageMeta{}) {
		v := *m.Image
		out.Image = &v
	}
	if m.Code != nil && *m.Code != (CodeMeta{}) {
		v := *m.Code
		out.Code = &v
	}
	if m.Custom != nil && *m.Custom != (CustomMeta{}) {
		v := *m.Custom
		out.Custom = &v
	}
	return out
}
