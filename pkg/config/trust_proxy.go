package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

type TrustProxyMode int

const (
	// TrustProxyNone uses the socket peer address as the client address.
	TrustProxyNone TrustProxyMode = iota
	// TrustProxyAll takes the left-most X-Forwarded-For entry.
	TrustProxyAll
	// TrustProxyHops trusts a fixed number of proxies counted from the peer.
	TrustProxyHops
	// TrustProxyList trusts X-Forwarded-For only from the listed proxies.
	TrustProxyList
)

type TrustProxyConfig struct {
	Mode    TrustProxyMode
	Hops    int
	Proxies []string
}

// ParseTrustProxy accepts "", "false", "true", a hop count or a comma
// separated list of proxy IPs/CIDRs.
func ParseTrustProxy(s string) (TrustProxyConfig, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "false":
		return TrustProxyConfig{Mode: TrustProxyNone}, nil
	case "true":
		return TrustProxyConfig{Mode: TrustProxyAll}, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return TrustProxyConfig{}, fmt.Errorf("hop count must not be negative: %d", n)
		}
		if n == 0 {
			return TrustProxyConfig{Mode: TrustProxyNone}, nil
		}
		return TrustProxyConfig{Mode: TrustProxyHops, Hops: n}, nil
	}

	proxies := splitList(s)
	for _, p := range proxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return TrustProxyConfig{}, fmt.Errorf("invalid proxy address %q", p)
		}
	}
	return TrustProxyConfig{Mode: TrustProxyList, Proxies: proxies}, nil
}
