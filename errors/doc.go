// Package errors provides structured error types for the wasm-codec library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Each Kind carries a canonical, stable message string, for
// example KindIntegerTooLong renders as "integer representation too long",
// so callers and conformance tests can match on text as well as on value.
// The Error type additionally records the section being decoded and the
// approximate byte offset where the problem was detected.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidValueType).
//		Section("type").
//		Offset(pos).
//		Detail("unexpected byte %#x", b).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedEnd(errors.PhaseDecode, pos)
//	err := errors.IndexOutOfRange(errors.PhaseDecode, "type", 7, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target *Error with an empty Phase matches on Kind alone.
package errors
