package core

import (
	"errors"
	"testing"
)

func validItem() Item {
	return Item{
		ID:        "a",
		Type:      TypeText,
		Content:   "hello",
		Title:     "Text Snippet",
		Timestamp: 1,
		Metadata:  Metadata{Source: SourceClipboard},
	}
}

func TestValidateOK(t *testing.T) {
	if err := Validate(validItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Item){
		"empty id":      func(it *Item) { it.ID = "" },
		"unknown type":  func(it *Item) { it.Type = "video" },
		"empty title":   func(it *Item) { it.Title = "" },
		"empty content": func(it *Item) { it.Content = "" },
		"bad source":    func(it *Item) { it.Metadata.Source = "dropbox" },
		"two variants": func(it *Item) {
			it.Metadata.Image = &ImageMeta{Width: 1}
			it.Metadata.Code = &CodeMeta{Language: "go"}
		},
	}
	for name, mutate := range cases {
		it := validItem()
		mutate(&it)
		if err := Validate(it); !errors.Is(err, ErrInvalidItem) {
			t.Fatalf("%s: expected ErrInvalidItem, got %v", name, err)
		}
	}
}
