package document

import "errors"

var (
	ErrNotFound        = errors.New("entity not found")
	ErrDuplicateID     = errors.New("duplicate entity id")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrInvalidPatch    = errors.New("patch does not apply to entity")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
