package history_test

import (
	"encoding/xml"
	"testing"

	"mellium.im/xmlstream"
	"wireglass.im/xmpp/history"
	"wireglass.im/xmpp/internal/xmpptest"
	"wireglass.im/xmpp/paging"
)

var (
	_ xml.Unmarshaler     = (*history.Query)(nil)
	_ xml.Marshaler       = (*history.Query)(nil)
	_ xmlstream.Marshaler = (*history.Query)(nil)
	_ xmlstream.WriterTo  = (*history.Query)(nil)
)

var resEncodingTestCases = []xmpptest.EncodingTestCase{
	0: {
		Value: &history.Result{
			Set: paging.Set{
				XMLName: xml.Name{Space: paging.NS, Local: "set"},
			},
		},
		XML: `<fin xmlns="urn:xmpp:mam:2" complete="false" stable="true"><set xmlns="http://jabber.org/protocol/rsm"><first></first><last></last></set></fin>`,
	},
}

func TestEncodeResult(t *testing.T) {
	xmpptest.RunEncodingTests(t, resEncodingTestCases)
}
