//go:generate go run ../internal/genfeature

// Package ibr2 implements Extensible In-Band Registration.
//
// BE ADVISED: This API is incomplete and is subject to change.
// Core functionality of this package is missing, and the entire package may be
// removed at any time.
package ibr2 // import "wireglass.im/xmpp/ibr2"
