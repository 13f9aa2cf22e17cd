package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is the stable identifier reported to callers for a failed parse.
type Code string

const (
	CodeExtractionFailed     Code = "extraction_failed"
	CodeEmptyOrCorrupt       Code = "empty_or_corrupt"
	CodePasswordRequired     Code = "password_required"
	CodeIncorrectPassword    Code = "incorrect_password"
	CodeBankDetectionFailed  Code = "bank_detection_failed"
	CodeFieldNotFound        Code = "field_not_found"
	CodeDateParseFailed      Code = "date_parse_failed"
	CodeAmountParseFailed    Code = "amount_parse_failed"
	CodeReconciliationFailed Code = "reconciliation_failed"
	CodeInvalidStatement     Code = "invalid_statement"
)

// Required field names as they appear in FieldNotFound errors.
const (
	FieldCardLastFour   = "card_last_four"
	FieldStatementMonth = "statement_month"
	FieldClosingBalance = "closing_balance"
	FieldTransactions   = "transactions"
)

var (
	ErrCardNumberNotFound      = &Error{Code: CodeFieldNotFound, Field: FieldCardLastFour}
	ErrStatementPeriodNotFound = &Error{Code: CodeFieldNotFound, Field: FieldStatementMonth}
	ErrClosingBalanceNotFound  = &Error{Code: CodeFieldNotFound, Field: FieldClosingBalance}
	ErrTransactionsNotFound    = &Error{Code: CodeFieldNotFound, Field: FieldTransactions}
)

// Error is the single structured failure returned for a document.
type Error struct {
	Code       Code              `json:"code"`
	Field      string            `json:"field,omitempty"`
	Token      string            `json:"token,omitempty"`
	Message    string            `json:"message"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Field)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on code, and on field when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

func FieldNotFound(field string) *Error {
	e := New(CodeFieldNotFound, fmt.Sprintf("required field %s not found", field))
	e.Field = field
	return e
}

func DateParseError(token string) *Error {
	e := New(CodeDateParseFailed, fmt.Sprintf("could not parse date %q", token))
	e.Token = token
	return e
}

func AmountParseError(token string, cause error) *Error {
	var e *Error
	if cause != nil {
		e = Wrap(cause, CodeAmountParseFailed, fmt.Sprintf("could not parse amount %q", token))
	} else {
		e = New(CodeAmountParseFailed, fmt.Sprintf("could not parse amount %q", token))
	}
	e.Token = token
	return e
}

func ReconciliationError(message string) *Error {
	return New(CodeReconciliationFailed, message)
}

func InvalidStatement(message string) *Error {
	return New(CodeInvalidStatement, message)
}

// ExtractionError builds a backend failure. code is one of the extraction
// codes; cause may be nil.
func ExtractionError(code Code, message string, cause error) *Error {
	if cause != nil {
		return Wrap(cause, code, message)
	}
	return New(code, message)
}

// WithField attaches the required field a nested failure was raised for.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// AsError converts any error into the structured form. Unknown errors are
// reported as extraction failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, CodeExtractionFailed, err.Error())
}
