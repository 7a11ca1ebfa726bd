package xmpp

import (
	"context"
	"encoding/xml"
	"io"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/internal/ns"
	"wireglass.im/xmpp/stream"
)

// A StreamFeature represents a feature that may be selected during stream
// negotiation. Features should be stateless and usable from multiple
// goroutines unless otherwise specified.
type StreamFeature struct {
	// The XML name of the feature in the <stream:features/> list. If a start
	// element with this name is seen while the session is reading the
	// features list, it triggers this StreamFeature's Parse function.
	Name xml.Name

	// Bits that must be set before this feature is advertised. For instance,
	// a feature that should only be advertised once the stream is encrypted
	// would set this to Secure.
	Necessary SessionState

	// Bits that must be off for this feature to be advertised. For instance,
	// a feature that performs authentication itself would set this to Authn
	// so that it stops being advertised once authentication succeeds.
	Prohibited SessionState

	// List writes the feature into a server's outgoing <stream:features/>
	// list and reports whether the feature is required.
	List func(ctx context.Context, e *xml.Encoder, start xml.StartElement) (req bool, err error)

	// Parse decodes the feature starting at start and reports whether it is
	// required along with any data needed to negotiate it.
	Parse func(ctx context.Context, r xmlstream.TokenReader, start *xml.StartElement) (req bool, data interface{}, err error)

	// Negotiate takes over the session temporarily to negotiate the feature.
	// The returned mask is ORed into the session's state once negotiation
	// completes successfully. If rw is non-nil the stream is restarted using
	// rw as the new underlying transport (as happens after STARTTLS).
	Negotiate func(ctx context.Context, session *Session, data interface{}) (mask SessionState, rw io.ReadWriter, err error)
}

type featureMatch struct {
	feature StreamFeature
	req     bool
	data    interface{}
}

// negotiateFeatures reads a single <stream:features/> list from the session,
// parses every advertised feature this session knows how to negotiate, and
// negotiates the first required feature found (or, if none are required,
// the first feature found). It reports the new session state bits and, if
// negotiation requires a stream restart, the new transport to restart with.
func negotiateFeatures(ctx context.Context, s *Session, features []StreamFeature) (mask SessionState, rw io.ReadWriter, err error) {
	tok, err := s.Token()
	if err != nil {
		return mask, nil, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok {
		return mask, nil, stream.RestrictedXML
	}
	if start.Name.Local != "features" || start.Name.Space != ns.Stream {
		return mask, nil, stream.InvalidXML
	}

	d := xml.NewTokenDecoder(s)
	var matches []featureMatch
parsefeatures:
	for {
		tok, err := d.Token()
		if err != nil {
			return mask, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			feature, ok := lookupFeature(features, t.Name, s.State())
			if !ok {
				if err = d.Skip(); err != nil {
					return mask, nil, err
				}
				continue parsefeatures
			}
			req, data, err := feature.Parse(ctx, d, &t)
			if err != nil {
				return mask, nil, err
			}
			matches = append(matches, featureMatch{feature: feature, req: req, data: data})
		case xml.EndElement:
			if t.Name.Local == "features" && t.Name.Space == ns.Stream {
				break parsefeatures
			}
			return mask, nil, stream.InvalidXML
		default:
			return mask, nil, stream.RestrictedXML
		}
	}

	if len(matches) == 0 {
		return Ready, nil, nil
	}

	// Mandatory-to-negotiate features (eg. STARTTLS before it has been
	// performed, or SASL before authentication) take priority over optional
	// ones; otherwise negotiate whatever was advertised first.
	chosen := matches[0]
	for _, m := range matches {
		if m.req {
			chosen = m
			break
		}
	}
	mask, rw, err = chosen.feature.Negotiate(ctx, s, chosen.data)
	return mask, rw, err
}

func lookupFeature(features []StreamFeature, name xml.Name, state SessionState) (StreamFeature, bool) {
	for _, feature := range features {
		if feature.Name != name {
			continue
		}
		if state&feature.Necessary != feature.Necessary || state&feature.Prohibited != 0 {
			continue
		}
		return feature, true
	}
	return StreamFeature{}, false
}
