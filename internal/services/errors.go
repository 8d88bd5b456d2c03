package services

import (
	"errors"
	"fmt"

	"kingdavid/internal/imaging"
)

var ErrImageRequired = errors.New("product image required")

// LoadError means the full reload failed; the session's list is now empty.
type LoadError struct{ Err error }

func (e *LoadError) Error() string { return "load products: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// Toggle names the quick action behind a save; empty for the edit form.
type Toggle string

const (
	ToggleStatus Toggle = "status"
	ToggleNew    Toggle = "new"
)

// SaveError wraps a failed Insert or Update.
type SaveError struct {
	ID     string
	Toggle Toggle
	Err    error
}

func (e *SaveError) Error() string {
	if e.ID == "" {
		return "insert product: " + e.Err.Error()
	}
	return fmt.Sprintf("update product %s: %v", e.ID, e.Err)
}
func (e *SaveError) Unwrap() error { return e.Err }

type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete product %s: %v", e.ID, e.Err) }
func (e *DeleteError) Unwrap() error { return e.Err }

// Notice turns an error into the short message shown to the admin.
// Unknown errors get a generic message so internals never reach the page.
func Notice(err error) string {
	var (
		loadErr *LoadError
		saveErr *SaveError
		delErr  *DeleteError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imaging.ErrSizeLimitExceeded):
		return "Image too large. Please use an image under 5MB."
	case errors.Is(err, imaging.ErrDecode):
		return "Could not read that image. Please try a different file."
	case errors.Is(err, ErrImageRequired):
		return "Please upload a product image."
	case errors.As(err, &loadErr):
		return "Error loading products. Please try again."
	case errors.As(err, &saveErr):
		switch saveErr.Toggle {
		case ToggleStatus:
			return "Error updating status. Please try again."
		case ToggleNew:
			return "Error updating product. Please try again."
		}
		return "Error saving product. Please try again."
	case errors.As(err, &delErr):
		return "Error deleting product. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
