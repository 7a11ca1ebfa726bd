//go:generate go run ../internal/genfeature

// Package upload implements sending files by uploading them to an HTTP server.
package upload // import "wireglass.im/xmpp/upload"
