package jid

import (
	"encoding/xml"
	"errors"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/precis"
)

// JID represents an XMPP address (historically a "Jabber ID"), a triple of
// localpart, domainpart, and resourcepart. The domainpart is required; the
// localpart and resourcepart are optional.
//
// A JID with no resourcepart is a "bare" JID; one with a resourcepart is a
// "full" JID. The zero value is not a valid JID; use New or Parse.
type JID struct {
	localpart    string
	domainpart   string
	resourcepart string
}

// New constructs a JID from its three parts, applying the PRECIS
// UsernameCaseMapped profile to the localpart, IDNA to the domainpart, and the
// PRECIS OpaqueString profile to the resourcepart (RFC 7622 §3), and returns an
// error if the result would not be a valid JID.
func New(localpart, domainpart, resourcepart string) (*JID, error) {
	if !utf8.ValidString(localpart) || !utf8.ValidString(resourcepart) {
		return nil, errors.New("jid: address contains invalid UTF-8")
	}

	domainpart, err := idna.ToUnicode(domainpart)
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(domainpart) {
		return nil, errors.New("jid: domainpart contains invalid UTF-8")
	}
	domainpart = strings.TrimSuffix(domainpart, ".")

	if localpart != "" {
		localpart, err = precis.UsernameCaseMapped.String(localpart)
		if err != nil {
			return nil, err
		}
	}
	if resourcepart != "" {
		resourcepart, err = precis.OpaqueString.String(resourcepart)
		if err != nil {
			return nil, err
		}
	}

	if err := commonChecks(localpart, domainpart, resourcepart); err != nil {
		return nil, err
	}

	return &JID{localpart: localpart, domainpart: domainpart, resourcepart: resourcepart}, nil
}

// Parse splits s into its localpart, domainpart, and resourcepart and
// constructs a JID from the result.
func Parse(s string) (*JID, error) {
	localpart, domainpart, resourcepart, err := SplitString(s)
	if err != nil {
		return nil, err
	}
	return New(localpart, domainpart, resourcepart)
}

// MustParse is like Parse but panics instead of returning an error. It is
// intended for use with constants.
func MustParse(s string) *JID {
	j, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return j
}

// SplitString splits out the localpart, domainpart, and resourcepart from a
// string representation of a JID. The parts are not guaranteed to be valid
// and must each be 1023 bytes or less.
func SplitString(s string) (localpart, domainpart, resourcepart string, err error) {
	// RFC 7622 §3.1: match the separator characters '@' and '/' before
	// applying any transformation algorithm that might produce them.
	parts := strings.SplitAfterN(s, "/", 2)

	if strings.HasSuffix(parts[0], "/") {
		if len(parts) == 2 && parts[1] != "" {
			resourcepart = parts[1]
		} else {
			return "", "", "", errors.New("jid: resourcepart must be larger than 0 bytes")
		}
	}

	norp := strings.TrimSuffix(parts[0], "/")
	nolp := strings.SplitAfterN(norp, "@", 2)
	if nolp[0] == "@" {
		return "", "", "", errors.New("jid: localpart must be larger than 0 bytes")
	}

	switch len(nolp) {
	case 1:
		domainpart = nolp[0]
	case 2:
		domainpart = nolp[1]
		localpart = strings.TrimSuffix(nolp[0], "@")
	}

	// A trailing label separator on the domainpart is ignored for the
	// purposes of comparison and routing (RFC 7622 §3.2).
	domainpart = strings.TrimSuffix(domainpart, ".")
	return localpart, domainpart, resourcepart, nil
}

func commonChecks(localpart, domainpart, resourcepart string) error {
	if len(localpart) > 1023 {
		return errors.New("jid: localpart must be smaller than 1024 bytes")
	}
	if strings.ContainsAny(localpart, "\"&'/:<>@") {
		return errors.New("jid: localpart contains forbidden characters")
	}
	if strings.ContainsRune(localpart, 0) || strings.ContainsRune(domainpart, 0) || strings.ContainsRune(resourcepart, 0) {
		return errors.New("jid: address contains a null byte")
	}
	if len(resourcepart) > 1023 {
		return errors.New("jid: resourcepart must be smaller than 1024 bytes")
	}
	if l := len(domainpart); l < 1 || l > 1023 {
		return errors.New("jid: domainpart must be between 1 and 1023 bytes")
	}
	return checkIP6String(domainpart)
}

func checkIP6String(domainpart string) error {
	if l := len(domainpart); l > 2 && strings.HasPrefix(domainpart, "[") && strings.HasSuffix(domainpart, "]") {
		if ip := net.ParseIP(domainpart[1 : l-1]); ip == nil || ip.To4() != nil {
			return errors.New("jid: domainpart is not a valid IPv6 address")
		}
	}
	return nil
}

// Localpart returns the localpart of the JID, or the empty string if absent.
func (j *JID) Localpart() string {
	if j == nil {
		return ""
	}
	return j.localpart
}

// Domainpart returns the domainpart of the JID.
func (j *JID) Domainpart() string {
	if j == nil {
		return ""
	}
	return j.domainpart
}

// Resourcepart returns the resourcepart of the JID, or the empty string if
// absent.
func (j *JID) Resourcepart() string {
	if j == nil {
		return ""
	}
	return j.resourcepart
}

// Bare returns a copy of the JID without its resourcepart.
func (j *JID) Bare() *JID {
	if j == nil {
		return nil
	}
	return &JID{localpart: j.localpart, domainpart: j.domainpart}
}

// Domain returns a copy of the JID with only its domainpart, stripping any
// localpart and resourcepart.
func (j *JID) Domain() *JID {
	if j == nil {
		return nil
	}
	return &JID{domainpart: j.domainpart}
}

// Equal reports whether j and j2 are, byte-for-byte, the same address once
// both have been put through their canonicalization profiles. A nil JID is
// equal only to another nil JID.
func (j *JID) Equal(j2 *JID) bool {
	if j == nil || j2 == nil {
		return j == j2
	}
	return j.localpart == j2.localpart &&
		j.domainpart == j2.domainpart &&
		j.resourcepart == j2.resourcepart
}

// String returns the string representation of the JID:
// "[localpart@]domainpart[/resourcepart]".
func (j *JID) String() string {
	if j == nil {
		return ""
	}
	var b strings.Builder
	if j.localpart != "" {
		b.WriteString(j.localpart)
		b.WriteByte('@')
	}
	b.WriteString(j.domainpart)
	if j.resourcepart != "" {
		b.WriteByte('/')
		b.WriteString(j.resourcepart)
	}
	return b.String()
}

// MarshalXMLAttr implements xml.MarshalerAttr so a JID can be used directly
// as a struct field tagged ",attr".
func (j *JID) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	if j == nil {
		return xml.Attr{}, nil
	}
	return xml.Attr{Name: name, Value: j.String()}, nil
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (j *JID) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := Parse(attr.Value)
	if err != nil {
		return err
	}
	*j = *parsed
	return nil
}
