// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package health

import (
	"net"
	"time"
)

// Default probe target: a well-known public DNS endpoint. A TCP dial is
// enough to distinguish "offline" from "the service is down".
const (
	defaultProbeAddr = "8.8.8.8:53"
)

// NetworkReachable reports whether basic network connectivity is present by
// dialing addr within timeout. An empty addr uses the default probe target.
func NetworkReachable(addr string, timeout time.Duration) bool {
	if addr == "" {
		addr = defaultProbeAddr
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
