package server

import "net"

// newListener is a seam so tests can bind to an ephemeral port (":0") and
// read back the chosen address.
func newListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
