package rowdec

import (
	"errors"
	"fmt"
)

// ErrKind classifies a DbErr
type ErrKind int

const (
	ErrConn ErrKind = iota
	ErrExec
	ErrQuery
	ErrRecordNotFound
	ErrCustom
	ErrType
	ErrJson
)

func (k ErrKind) String() string {
	switch k {
	case ErrConn:
		return "Connection"
	case ErrExec:
		return "Execution"
	case ErrQuery:
		return "Query"
	case ErrRecordNotFound:
		return "RecordNotFound"
	case ErrCustom:
		return "Custom"
	case ErrType:
		return "Type"
	case ErrJson:
		return "Json"
	}
	return "Unknown"
}

// DbErr is the single-level error returned to ordinary callers
type DbErr struct {
	Kind    ErrKind
	Message string
	// Err is the underlying driver (or conversion) error, if any
	Err error
}

func (e *DbErr) Error() string {
	return e.Kind.String() + " Error: " + e.Message
}

func (e *DbErr) Unwrap() error {
	return e.Err
}

// QueryErr creates a DbErr of kind ErrQuery
func QueryErr(msg string) *DbErr {
	return &DbErr{Kind: ErrQuery, Message: msg}
}

// WrapQueryErr wraps err as a DbErr of kind ErrQuery
//
// if err is already a DbErr it is returned unchanged
func WrapQueryErr(err error) *DbErr {
	return wrapErr(ErrQuery, err)
}

func wrapErr(kind ErrKind, err error) *DbErr {
	var dbErr *DbErr
	if errors.As(err, &dbErr) {
		return dbErr
	}
	return &DbErr{Kind: kind, Message: err.Error(), Err: err}
}

// ErrNull is matched (using errors.Is) by a TryGetError for a column whose value was SQL NULL
var ErrNull = errors.New("value is null")

const nullDecodeMessage = "error occurred while decoding: Null"

// TryGetError is the two-level decode failure
//
// it is either Null (the column is present but NULL) or a wrapped DbErr - never both
type TryGetError struct {
	dbErr *DbErr
}

func nullError() *TryGetError {
	return &TryGetError{}
}

func dbError(err *DbErr) *TryGetError {
	if err == nil {
		panic("rowdec: nil DbErr")
	}
	return &TryGetError{dbErr: err}
}

// NewNullError returns the Null form of TryGetError, for use by TryGetable implementations
func NewNullError() *TryGetError {
	return nullError()
}

// NewDbError returns the DbErr form of TryGetError, for use by TryGetable implementations
func NewDbError(err *DbErr) *TryGetError {
	return dbError(err)
}

// IsNull reports whether the column value was SQL NULL
func (e *TryGetError) IsNull() bool {
	return e.dbErr == nil
}

// DbErr returns the wrapped error (nil if IsNull)
func (e *TryGetError) DbErr() *DbErr {
	return e.dbErr
}

// IntoDbErr flattens to a DbErr - Null becomes a query error, a wrapped DbErr is returned as is
func (e *TryGetError) IntoDbErr() *DbErr {
	if e.dbErr == nil {
		return QueryErr(nullDecodeMessage)
	}
	return e.dbErr
}

func (e *TryGetError) Error() string {
	if e.dbErr == nil {
		return ErrNull.Error()
	}
	return e.dbErr.Error()
}

func (e *TryGetError) Is(target error) bool {
	return target == ErrNull && e.dbErr == nil
}

func (e *TryGetError) Unwrap() error {
	if e.dbErr == nil {
		return nil
	}
	return e.dbErr
}

// IntoDbErr flattens any error from the two-level decode into a *DbErr
//
// nil stays nil; a TryGetError is flattened with TryGetError.IntoDbErr; any other error is wrapped
// as a query error
func IntoDbErr(err error) error {
	if err == nil {
		return nil
	}
	var tge *TryGetError
	if errors.As(err, &tge) {
		return tge.IntoDbErr()
	}
	return WrapQueryErr(err)
}

func decodeErr(column string, err error) *TryGetError {
	return dbError(&DbErr{
		Kind:    ErrQuery,
		Message: fmt.Sprintf("error occurred while decoding %q: %s", column, err.Error()),
		Err:     err,
	})
}

func columnNotFound(column string) *TryGetError {
	return dbError(QueryErr(fmt.Sprintf("no column found for name: %s", column)))
}
