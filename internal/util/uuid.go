package util

import "github.com/google/uuid"

// GenerateUUID returns a random (version 4) UUID string. It panics only if
// the system random source fails.
func GenerateUUID() string {
	return uuid.Must(uuid.NewRandom()).String()
}
