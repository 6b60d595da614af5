// Package errors provides structured error types for the layoutkit library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: the symbol path involved,
// the type name, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindNotFound).
//		Path("unit", "status", "labors").
//		Type("unit").
//		Detail("no such member").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseResolve, "enum", "profession")
//	err := errors.MalformedPath(errors.PhaseScript, "unit..id")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
