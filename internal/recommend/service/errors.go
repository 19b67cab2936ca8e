package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFatalLoad marks catalog A failures the process cannot recover from.
	ErrFatalLoad = errors.New("catalog load failed")
	// ErrEmptyCatalog is returned when catalog B has no rows.
	ErrEmptyCatalog = errors.New("song dataset could not be loaded")
)

// SchemaError reports required columns missing from a catalog.
type SchemaError struct {
	Catalog string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: dataset is missing required columns: %s", e.Catalog, strings.Join(e.Missing, ", "))
}

func fatalLoad(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFatalLoad, fmt.Sprintf(format, args...))
}
