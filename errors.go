package depot

import (
	"fmt"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeNotRegistered indicates no definition is installed under a key
	CodeNotRegistered = "NOT_REGISTERED"

	// CodeMissingDependency indicates a constructor or factory could not obtain a dependency
	CodeMissingDependency = "MISSING_DEPENDENCY"

	// CodeTypeMismatch indicates the produced instance does not satisfy the requested type
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeNullValue indicates a creation strategy produced nil or a null object
	CodeNullValue = "NULL_VALUE"

	// CodeNoStrategy indicates a definition has no creation strategy usable for the request
	CodeNoStrategy = "NO_STRATEGY"

	// CodeSelfRecursion indicates a definition was re-entered before its construction finished
	CodeSelfRecursion = "SELF_RECURSION"

	// CodeInvalidDefinition indicates a definition was built incorrectly
	CodeInvalidDefinition = "INVALID_DEFINITION"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrNotRegisteredSentinel is a sentinel error for missing registrations (for error checking).
var ErrNotRegisteredSentinel = errs.NewError(CodeNotRegistered, "not registered", nil)

// ErrMissingDependencySentinel is a sentinel error for failed constructors (for error checking).
var ErrMissingDependencySentinel = errs.NewError(CodeMissingDependency, "missing dependency", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrNullValueSentinel is a sentinel error for nil results (for error checking).
var ErrNullValueSentinel = errs.NewError(CodeNullValue, "null value", nil)

// ErrNoStrategySentinel is a sentinel error for definitions that cannot build anything.
var ErrNoStrategySentinel = errs.NewError(CodeNoStrategy, "no creation strategy", nil)

// ErrSelfRecursionSentinel is a sentinel error for re-entrant construction (for error checking).
var ErrSelfRecursionSentinel = errs.NewError(CodeSelfRecursion, "recursive construction", nil)

// ErrInvalidDefinitionSentinel is a sentinel error for builder mistakes (for error checking).
var ErrInvalidDefinitionSentinel = errs.NewError(CodeInvalidDefinition, "invalid definition", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrNotRegistered creates an error for a key with no definition
func ErrNotRegistered(key Key) *errs.Error {
	return errs.NewError(
		CodeNotRegistered,
		fmt.Sprintf("no definition registered for '%s'", key),
		nil,
	).WithContext("key", key.String()).(*errs.Error)
}

// ErrMissingDependency creates an error for a constructor that reported failure
func ErrMissingDependency(key Key, cause error) *errs.Error {
	return errs.NewError(
		CodeMissingDependency,
		fmt.Sprintf("'%s' could not be constructed", key),
		cause,
	).WithContext("key", key.String()).(*errs.Error)
}

// ErrTypeMismatch creates an error for an instance of the wrong type
func ErrTypeMismatch(key Key, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("'%s' type mismatch: got %T", key, actual),
		nil,
	).WithContext("key", key.String()).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// ErrNullValue creates an error for a strategy that produced nothing
func ErrNullValue(key Key) *errs.Error {
	return errs.NewError(
		CodeNullValue,
		fmt.Sprintf("'%s' produced a null value", key),
		nil,
	).WithContext("key", key.String()).(*errs.Error)
}

// ErrNoStrategy creates an error for a definition without a usable creation strategy
func ErrNoStrategy(key Key) *errs.Error {
	return errs.NewError(
		CodeNoStrategy,
		fmt.Sprintf("'%s' has no creation strategy for this request", key),
		nil,
	).WithContext("key", key.String()).(*errs.Error)
}

// ErrSelfRecursion creates the error raised when construction re-enters itself
func ErrSelfRecursion(key Key) *errs.Error {
	return errs.NewError(
		CodeSelfRecursion,
		fmt.Sprintf("'%s' is resolved again while it is being constructed; break the cycle with property injection or Lazy", key),
		nil,
	).WithContext("key", key.String()).(*errs.Error)
}

// ErrInvalidDefinition creates an error for a definition built incorrectly
func ErrInvalidDefinition(definition, reason string) *errs.Error {
	return errs.NewError(
		CodeInvalidDefinition,
		fmt.Sprintf("definition '%s' is invalid: %s", definition, reason),
		nil,
	).WithContext("definition", definition).
		WithContext("reason", reason).(*errs.Error)
}
