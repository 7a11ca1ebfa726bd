// Package codec provides functionality for serializing and deserializing an
// XMPP stream from its native XML encoding and for creating new serialization
// formats.
//
// Be advised: This API is still unstable and is subject to change.
package codec // import "wireglass.im/xmpp/codec"
