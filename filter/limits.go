package filter

import "errors"

// Limits on filter text accepted by Parse.
const (
	MaxFilterLength    = 1 << 20
	MaxExpressionDepth = 100
)

var (
	ErrFilterTooLong     = errors.New("filter too long")
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
)
