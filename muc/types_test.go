package muc_test

import (
	"encoding/xml"

	"wireglass.im/xmpp/muc"
)

var (
	_ xml.MarshalerAttr   = (*muc.Role)(nil)
	_ xml.UnmarshalerAttr = (*muc.Role)(nil)
	_ xml.MarshalerAttr   = (*muc.Affiliation)(nil)
	_ xml.UnmarshalerAttr = (*muc.Affiliation)(nil)
)
