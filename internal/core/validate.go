package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator"
)

var (
	ErrInvalidItem = errors.New("invalid item")

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks the structural invariants of an item: id, a known type,
// non-empty title and content, a known source and at most one metadata variant.
func Validate(it Item) error {
	if err := validatorInstance().Struct(it); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	if !it.Metadata.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidItem, it.Metadata.Source)
	}
	if it.Metadata.Variants() > 1 {
		return fmt.Errorf("%w: metadata carries %d variants", ErrInvalidItem, it.Metadata.Variants())
	}
	return nil
}
