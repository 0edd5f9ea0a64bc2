package gritql

import "github.com/google/uuid"

// newUUID mints a MatchResult correlation id (spec §6 "a uuid for
// correlation"), grounded on the teacher's uuid.NewString() usage in
// internal/db/api.go.
func newUUID() string {
	return uuid.NewString()
}
