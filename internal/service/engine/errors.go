package engine

import (
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/ollama/ollama/api"
)

// ErrEngineUnavailable marks failures caused by an unreachable backend, as
// opposed to faults inside a running generation.
var ErrEngineUnavailable = errors.New("drawing engine unavailable")

// IsUnavailable reports whether err means the Ollama backend cannot be
// reached. Detection is structural: transport errors, refused connections,
// and gateway-class status codes; anything else is a generation fault.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEngineUnavailable) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusServiceUnavailable ||
			statusErr.StatusCode == http.StatusBadGateway
	}

	return false
}
