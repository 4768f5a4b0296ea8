package utils

import "github.com/google/uuid"

// GenerateID returns a random v4 UUID, used as token and request ids
func GenerateID() string {
	return uuid.NewString()
}
