package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies game errors so handlers can pick a status code and
// callers can distinguish "you did something wrong" from "we broke".
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindInsufficientFunds
	KindState
	KindNotFound
)

type GameError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *GameError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) error {
	return &GameError{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func NewInsufficientFundsError(have, need float64) error {
	return &GameError{
		Kind:   KindInsufficientFunds,
		Reason: fmt.Sprintf("insufficient balance: have %.2f, need %.2f", have, need),
	}
}

func NewStateError(format string, args ...interface{}) error {
	return &GameError{Kind: KindState, Reason: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &GameError{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func NewInternalError(reason string, err error) error {
	return &GameError{Kind: KindInternal, Reason: reason, Err: err}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

func IsInsufficientFunds(err error) bool { return KindOf(err) == KindInsufficientFunds }
func IsStateError(err error) bool        { return KindOf(err) == KindState }
func IsNotFound(err error) bool          { return KindOf(err) == KindNotFound }
func IsValidationError(err error) bool   { return KindOf(err) == KindValidation }
