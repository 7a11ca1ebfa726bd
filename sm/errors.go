package sm

import "fmt"

// ProtocolError is returned when a peer violates the XEP-0198 stream
// management protocol, for instance by sending a malformed or unexpected
// nonza in response to enable/resume, or by letting a hard acknowledgement
// timeout lapse.
type ProtocolError struct {
	Msg string
}

func (e ProtocolError) Error() string {
	return fmt.Sprintf("sm: protocol error: %s", e.Msg)
}
