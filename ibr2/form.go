package ibr2

import (
	"wireglass.im/xmpp/form"
)

// Form is a challenge that presents or receives a data form as specified in
// XEP-0004.
// The returned Challenge sets only Type: f is not called, and Send, Respond and
// Receive are nil, so no form is sent, received or answered.
func Form(f func(data *form.Data) (*form.Data, error)) Challenge {
	return Challenge{
		Type: form.NS,
	}
}
