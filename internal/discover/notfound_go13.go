// +build go1.13

package discover

import (
	"net"
)

func isNotFound(dnsErr *net.DNSError) bool {
	return dnsErr.IsNotFound
}
