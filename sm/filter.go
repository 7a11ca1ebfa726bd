package sm

import (
	"encoding/xml"
	"errors"
)

// ErrDrop is returned by a Filter to indicate that the stanza it was given
// should be silently discarded instead of being sent (for an outbound
// filter) or delivered to the wrapped Handler (for an inbound filter).
var ErrDrop = errors.New("sm: stanza dropped by filter")

// A Filter inspects, and may rewrite, a single stanza's start element and
// payload as it passes through a Stream's inbound or outbound chain.
// Filters run in registration order; each is handed the result of the
// previous one. A Filter must not retain r past the call and should be pure
// with respect to anything other than its own bookkeeping, since the same
// chain runs for every stanza on the stream.
type Filter func(start xml.StartElement, r xml.TokenReader) (xml.StartElement, xml.TokenReader, error)

func runFilters(filters []Filter, start xml.StartElement, r xml.TokenReader) (xml.StartElement, xml.TokenReader, error) {
	var err error
	for _, f := range filters {
		start, r, err = f(start, r)
		if err != nil {
			return start, r, err
		}
	}
	return start, r, nil
}
