package domain

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidTime        = errors.New("invalid time of day")
	ErrInvalidDescription = errors.New("invalid description")
	ErrEmptyDay           = errors.New("day has no activities")
	ErrDayCompleted       = errors.New("day is completed")
	ErrDayNotCompleted    = errors.New("day is not completed")
)
