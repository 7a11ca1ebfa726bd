package jid_test

import (
	"testing"

	"wireglass.im/xmpp/jid"
)

var parseTests = [...]struct {
	in       string
	local    string
	domain   string
	resource string
	err      bool
}{
	0: {in: "example.net", domain: "example.net"},
	1: {in: "feste@example.net", local: "feste", domain: "example.net"},
	2: {in: "feste@example.net/clown", local: "feste", domain: "example.net", resource: "clown"},
	3: {in: "example.net/clown", domain: "example.net", resource: "clown"},
	4: {in: "example.net.", domain: "example.net"},
	5: {in: "@example.net", err: true},
	6: {in: "feste@example.net/", err: true},
	7: {in: "feste@/clown", err: true},
}

func TestParse(t *testing.T) {
	for i, tc := range parseTests {
		j, err := jid.Parse(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("%d: expected an error parsing %q", i, tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%d: unexpected error parsing %q: %v", i, tc.in, err)
		}
		if j.Localpart() != tc.local || j.Domainpart() != tc.domain || j.Resourcepart() != tc.resource {
			t.Errorf("%d: parsed %q as (%q, %q, %q), want (%q, %q, %q)", i, tc.in,
				j.Localpart(), j.Domainpart(), j.Resourcepart(), tc.local, tc.domain, tc.resource)
		}
	}
}

func TestBareStripsResource(t *testing.T) {
	j := jid.MustParse("feste@example.net/clown")
	bare := j.Bare()
	if bare.Resourcepart() != "" {
		t.Errorf("Bare() left a resourcepart: %q", bare.Resourcepart())
	}
	if bare.Localpart() != j.Localpart() || bare.Domainpart() != j.Domainpart() {
		t.Errorf("Bare() changed localpart/domainpart")
	}
}

func TestEqual(t *testing.T) {
	a := jid.MustParse("feste@example.net/clown")
	b := jid.MustParse("feste@example.net/clown")
	c := jid.MustParse("feste@example.net/fool")
	if !a.Equal(b) {
		t.Error("expected equal JIDs to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected JIDs with different resourceparts to compare unequal")
	}
	var nilJID *jid.JID
	if !nilJID.Equal(nil) {
		t.Error("expected two nil JIDs to compare equal")
	}
	if a.Equal(nilJID) {
		t.Error("expected a non-nil JID to never equal nil")
	}
}

func TestString(t *testing.T) {
	for i, tc := range parseTests {
		if tc.err {
			continue
		}
		j, err := jid.Parse(tc.in)
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		// Round-trip: reparsing the string form must produce the same JID.
		rt, err := jid.Parse(j.String())
		if err != nil {
			t.Fatalf("%d: could not reparse %q: %v", i, j.String(), err)
		}
		if !j.Equal(rt) {
			t.Errorf("%d: %q did not round-trip through String(), got %q", i, tc.in, j.String())
		}
	}
}
