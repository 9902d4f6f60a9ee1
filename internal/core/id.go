package core

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

type RequestID string

// NewRequestID returns an identifier that ties log lines and error messages
// to a single API request.
func NewRequestID() RequestID {
	return RequestID("req_" + timestamp() + "_" + randomSeed())
}

func timestamp() string {
	return time.Now().UTC().Format("20060102T150405.000000000")
}

func randomSeed() string {
	buffer := make([]byte, 6)
	_, _ = rand.Read(buffer)
	return hex.EncodeToString(buffer)
}
