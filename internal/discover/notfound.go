// +build !go1.13

package discover

import (
	"net"
	"strings"
)

func isNotFound(err error) bool {
	dnsErr, ok := err.(*net.DNSError)
	return ok && strings.Contains(dnsErr.Error(), "no such host")
}
