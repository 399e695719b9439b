package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnknownKind          = errors.New("unknown component kind")
	ErrUnknownStyleKey      = errors.New("unknown style key")
	ErrNotEditable          = errors.New("attribute not editable for this kind")
	ErrInvalidValue         = errors.New("invalid attribute value")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrLoginRejected        = errors.New("login rejected")
)
