package calendar

import "errors"

var ErrValidation = errors.New("invalid input")
var ErrDuplicateEvent = errors.New("event already exists")
var ErrNotFound = errors.New("not found")

// ErrNoActiveCalendar is returned by operations that implicitly target the
// active calendar when none has been selected with UseCalendar.
var ErrNoActiveCalendar = errors.New("no calendar is currently in use")
