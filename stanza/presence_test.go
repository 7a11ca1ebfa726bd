package stanza

import (
	"fmt"
)

var (
	_ fmt.Stringer = (*presenceType)(nil)
	_ fmt.Stringer = ProbePresence
)
