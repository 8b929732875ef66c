package wol

import "fmt"

// MissingParameterError is returned when a mandatory request field is absent.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing mandatory parameter %q", e.Param)
}

// InvalidMACError is returned in strict mode for addresses that are not
// 12 hex digits once colons are removed.
type InvalidMACError struct {
	MAC string
}

func (e *InvalidMACError) Error() string {
	return fmt.Sprintf("invalid MAC address %q", e.MAC)
}

// TransportOpenError wraps a failure to create or configure the UDP socket.
type TransportOpenError struct {
	Err error
}

func (e *TransportOpenError) Error() string {
	return fmt.Sprintf("failed to open UDP socket: %v", e.Err)
}

func (e *TransportOpenError) Unwrap() error {
	return e.Err
}
