package browser

import (
	"context"
	"net"
	"strconv"
	"time"
)

// PortProbe is the availability of one candidate debug port.
type PortProbe struct {
	Port      int  `json:"port"`
	Available bool `json:"available"`
}

// HostConnectivity reports which loopback names can host a listener.
type HostConnectivity struct {
	LocalhostOK     bool   `json:"localhost_ok"`
	IPv4OK          bool   `json:"ipv4_ok"`
	RecommendedHost string `json:"recommended_host"`
}

// IsPortAvailable reports whether a listener can be bound on host:port.
// Bind failures of any kind map to false.
func IsPortAvailable(port int, host string) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	return ln.Close() == nil
}

// FindAvailablePort scans [start, end] and returns the first port that can
// be bound on 127.0.0.1. The bool is false when the range is exhausted.
func FindAvailablePort(start, end int) (int, bool) {
	for port := start; port <= end; port++ {
		if IsPortAvailable(port, DefaultHost) {
			return port, true
		}
	}
	return 0, false
}

// ProbePorts reports availability for every port in [start, end].
func ProbePorts(start, end int) []PortProbe {
	probes := make([]PortProbe, 0, max(0, end-start+1))
	for port := start; port <= end; port++ {
		probes = append(probes, PortProbe{Port: port, Available: IsPortAvailable(port, DefaultHost)})
	}
	return probes
}

// CheckHostConnectivity probes localhost and 127.0.0.1 independently on
// probePort. 127.0.0.1 is preferred because it avoids hosts-file and
// IPv6-first resolution of localhost.
func CheckHostConnectivity(ctx context.Context, probePort int) HostConnectivity {
	// Sequential: localhost usually resolves to 127.0.0.1, so concurrent
	// probes on the same port would collide.
	result := HostConnectivity{
		LocalhostOK: probeHost(ctx, LocalhostHost, probePort),
		IPv4OK:      probeHost(ctx, DefaultHost, probePort),
	}

	switch {
	case result.IPv4OK:
		result.RecommendedHost = DefaultHost
	case result.LocalhostOK:
		result.RecommendedHost = LocalhostHost
	default:
		result.RecommendedHost = DefaultHost
	}
	return result
}

// probeHost binds a listener on host:port and dials it back, which catches
// names that resolve but cannot round-trip a connection.
func probeHost(ctx context.Context, host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// flipHost swaps between the two loopback names.
func flipHost(host string) string {
	if host == LocalhostHost {
		return DefaultHost
	}
	return LocalhostHost
}
