// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindDuplicate    Kind = "duplicate_entry"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindServer       Kind = "server_error"
)

// Error is a classified failure. Details carries per-field messages for
// validation errors and is omitted otherwise.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind onto the HTTP status the boundary responds with.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Field is shorthand for a validation error on a single field.
func Field(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func Duplicate(message string, err error) *Error {
	return &Error{Kind: KindDuplicate, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindServer, Message: message, Err: err}
}

// FieldErrors accumulates per-field messages so every failing field is
// reported at once.
type FieldErrors map[string]string

func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// Err returns nil when nothing was added.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f.summary(), map[string]string(f))
}

func (f FieldErrors) summary() string {
	msgs := make([]string, 0, len(f))
	for _, m := range f {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// As extracts the classified error from err. Unclassified errors are
// translated: gorm duplicate keys become DuplicateEntry, missing records
// NotFound, anything else ServerError.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Duplicate("duplicate entry", err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return FromBinding(err)
	}
	return Internal("internal server error", err)
}

func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// FromBinding converts a request binding failure into a ValidationError.
// validator errors are expanded so every failing field gets a message;
// anything else (malformed JSON, bad time layout) becomes a body error.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Field("body", "invalid request body: "+err.Error())
	}
	fields := FieldErrors{}
	for _, fe := range verrs {
		fields.Add(jsonField(fe), describe(fe))
	}
	return fields.Err().(*Error)
}

// jsonField turns "createInvoiceRequest.Items[0].DiscountValue" into
// "items[0].discountValue".
func jsonField(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	if field != "" {
		field = strings.ToLower(field[:1]) + field[1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
