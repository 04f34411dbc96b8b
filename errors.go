package constructioncarbon

import (
	"errors"
	"fmt"
)

// Sentinel causes of structural errors. Compare with errors.Is.
var (
	ErrFactorNotFound  = errors.New("emission factor not found")
	ErrInvalidFactor   = errors.New("invalid emission factor")
	ErrMalformedNumber = errors.New("malformed number")
	ErrMissingTotals   = errors.New("missing required totals")
	ErrUnknownUnit     = errors.New("unknown emission unit")
	ErrUnknownActivity = errors.New("unknown activity type")
	ErrUnknownModule   = errors.New("unknown lifecycle module")
)

// StructuralError reports input the engine cannot compute a result from. The
// caller must not display a total for the computation that returned it.
type StructuralError struct {
	Op    string
	Field string
	Err   error
}

func (structErr *StructuralError) Error() string {
	if structErr.Field == "" {
		return fmt.Sprintf("%s failed: %s", structErr.Op, structErr.Err.Error())
	}
	return fmt.Sprintf("%s failed (field: %s): %s", structErr.Op, structErr.Field, structErr.Err.Error())
}

func (structErr *StructuralError) Unwrap() error {
	return structErr.Err
}

// NewStructuralError wraps err for operation op on field.
func NewStructuralError(op, field string, err error) *StructuralError {
	return &StructuralError{Op: op, Field: field, Err: err}
}
