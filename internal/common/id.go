package common

import (
	"github.com/google/uuid"
)

// NewCommandID generates a unique command correlation ID with the "cmd_" prefix
// Format: cmd_<uuid>
func NewCommandID() string {
	return "cmd_" + uuid.New().String()
}

// NewRequestID generates a unique request correlation ID with the "req_" prefix
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
