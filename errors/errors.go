package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // binary to structure
	PhaseEncode   Phase = "encode"   // structure to binary
	PhaseValidate Phase = "validate" // cross-reference validation
	PhaseScan     Phase = "scan"     // raw section scanning
)

// Kind categorizes the error
type Kind string

const (
	KindUnexpectedEnd       Kind = "unexpected_end"
	KindIntegerTooLong      Kind = "integer_too_long"
	KindIntegerTooLarge     Kind = "integer_too_large"
	KindInvalidUTF8         Kind = "invalid_utf8"
	KindInvalidMagic        Kind = "invalid_magic"
	KindInvalidVersion      Kind = "invalid_version"
	KindInvalidValueType    Kind = "invalid_value_type"
	KindInvalidKindTag      Kind = "invalid_kind_tag"
	KindInvalidLimits       Kind = "invalid_limits"
	KindInvalidInitExpr     Kind = "invalid_init_expr"
	KindInvalidByte         Kind = "invalid_byte"
	KindSectionSizeMismatch Kind = "section_size_mismatch"
	KindSectionOrder        Kind = "section_order"
	KindUnknownSection      Kind = "unknown_section"
	KindInconsistentLengths Kind = "inconsistent_lengths"
	KindDataCountMismatch   Kind = "data_count_mismatch"
	KindIndexOutOfRange     Kind = "index_out_of_range"
	KindDuplicateSection    Kind = "duplicate_section"
)

// message returns the canonical message text for a kind. These strings are
// stable: tests and callers match on them.
func (k Kind) message() string {
	switch k {
	case KindUnexpectedEnd:
		return "unexpected end"
	case KindIntegerTooLong:
		return "integer representation too long"
	case KindIntegerTooLarge:
		return "integer too large"
	case KindInvalidUTF8:
		return "invalid UTF-8 encoding"
	case KindInvalidMagic:
		return "invalid magic number"
	case KindInvalidVersion:
		return "invalid version"
	case KindInvalidValueType:
		return "invalid value type"
	case KindInvalidKindTag:
		return "invalid extern kind tag"
	case KindInvalidLimits:
		return "invalid limits flag"
	case KindInvalidInitExpr:
		return "invalid initializer expression"
	case KindInvalidByte:
		return "invalid byte"
	case KindSectionSizeMismatch:
		return "section size mismatch"
	case KindSectionOrder:
		return "section out of order"
	case KindUnknownSection:
		return "unknown section id"
	case KindInconsistentLengths:
		return "function and code section have inconsistent lengths"
	case KindDataCountMismatch:
		return "data count and data section have inconsistent lengths"
	case KindIndexOutOfRange:
		return "index out of range"
	case KindDuplicateSection:
		return "duplicate section"
	default:
		return string(k)
	}
}

// Error is the structured error type used throughout the codec
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(e.Kind.message())

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}

	if e.Offset > 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches any phase, so kind-only sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error with the given kind anywhere in
// its chain.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Section sets the section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset where the error was detected
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnexpectedEnd creates a truncated-input error
func UnexpectedEnd(phase Phase, offset int) *Error {
	return &Error{Phase: phase, Kind: KindUnexpectedEnd, Offset: offset}
}

// IntegerTooLong creates an overlong-varint error
func IntegerTooLong(phase Phase, offset int) *Error {
	return &Error{Phase: phase, Kind: KindIntegerTooLong, Offset: offset}
}

// IntegerTooLarge creates a non-canonical final-group error
func IntegerTooLarge(phase Phase, offset int) *Error {
	return &Error{Phase: phase, Kind: KindIntegerTooLarge, Offset: offset}
}

// InvalidUTF8 creates an invalid UTF-8 error with a byte preview
func InvalidUTF8(phase Phase, offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidByte creates an unexpected-byte error
func InvalidByte(phase Phase, kind Kind, offset int, got byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf("unexpected byte %#x", got),
	}
}

// SectionSizeMismatch creates a declared-vs-consumed size error
func SectionSizeMismatch(section string, declared, consumed int) *Error {
	return &Error{
		Phase:   PhaseDecode,
		Kind:    KindSectionSizeMismatch,
		Section: section,
		Detail:  fmt.Sprintf("declared %d bytes, consumed %d", declared, consumed),
	}
}

// IndexOutOfRange creates a cross-reference error
func IndexOutOfRange(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndexOutOfRange,
		Detail: fmt.Sprintf("%s index %d out of range (count %d)", what, index, length),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
