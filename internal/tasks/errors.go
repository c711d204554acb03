package tasks

import "errors"

var (
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	ErrInvalidEmail = errors.New("please enter a valid email address")
)
