package models

import "errors"

// ErrSprintNotFound is returned when a sprint name is unknown to the
// sheet reader.
var ErrSprintNotFound = errors.New("sprint not found")
