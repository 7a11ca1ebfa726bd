package bookmarks_test

import (
	"testing"

	"wireglass.im/xmpp/bookmarks"
	"wireglass.im/xmpp/internal/xmpptest"
)

var marshalTestCases = []xmpptest.EncodingTestCase{
	0: {
		Value: &bookmarks.Channel{},
		XML:   `<conference xmlns="urn:xmpp:bookmarks:1" autojoin="false"></conference>`,
	},
	1: {
		NoMarshal: true,
		Value:     &bookmarks.Channel{Autojoin: true},
		XML:       `<conference xmlns="urn:xmpp:bookmarks:1" autojoin="1"></conference>`,
	},
	2: {
		Value: &bookmarks.Channel{
			Autojoin:   true,
			Name:       "name",
			Nick:       "nick",
			Password:   "pass",
			Extensions: []byte("ext"),
		},
		XML: `<conference xmlns="urn:xmpp:bookmarks:1" autojoin="true" name="name"><nick>nick</nick><password>pass</password><extensions>ext</extensions></conference>`,
	},
	3: {
		Value: &bookmarks.Channel{
			Autojoin:   true,
			Name:       "name",
			Nick:       "nick",
			Password:   "pass",
			Extensions: []byte("ext"),
		},
		XML: `<conference xmlns="urn:xmpp:bookmarks:1" autojoin="true" name="name"><nick>nick</nick><password>pass</password><extensions>ext</extensions></conference>`,
	},
}

func TestEncode(t *testing.T) {
	xmpptest.RunEncodingTests(t, marshalTestCases)
}
