package httperr

import "errors"

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	// store failures that must surface with a stable code
	KindUnavailable Kind = "unavailable"
)

type BusinessError struct {
	Code    string
	Kind    Kind
	Reason  string
	Details any
}

func (e BusinessError) Error() string {
	if e.Reason != "" {
		return e.Code + ": " + e.Reason
	}
	return e.Code
}

func ErrValidation(code, reason string) error {
	return BusinessError{Code: code, Kind: KindValidation, Reason: reason}
}

func ErrNotFound(code string) error {
	return BusinessError{Code: code, Kind: KindNotFound}
}

func ErrConflict(code, reason string) error {
	return BusinessError{Code: code, Kind: KindConflict, Reason: reason}
}

func ErrConflictDetails(code, reason string, details any) error {
	return BusinessError{Code: code, Kind: KindConflict, Reason: reason, Details: details}
}

func ErrUnavailable(code string) error {
	return BusinessError{Code: code, Kind: KindUnavailable}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf returns the business kind of err, or "" for infrastructure errors.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
