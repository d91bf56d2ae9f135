package middleware

import (
	"net"

	"agent-falcon/pkg/config"

	"github.com/gofiber/fiber/v2"
)

// ClientIP returns a KeyFunc resolving the client address under the given
// proxy trust policy. The address chain is X-Forwarded-For followed by the
// socket peer, walked from the right.
func ClientIP(trust config.TrustProxyConfig) KeyFunc {
	var nets []*net.IPNet
	if trust.Mode == config.TrustProxyList {
		nets = parseProxyNets(trust.Proxies)
	}

	return func(c *fiber.Ctx) string {
		remote := c.Context().RemoteIP().String()

		switch trust.Mode {
		case config.TrustProxyAll:
			if ips := c.IPs(); len(ips) > 0 {
				return ips[0]
			}
			return remote

		case config.TrustProxyHops:
			chain := append(c.IPs(), remote)
			idx := len(chain) - 1 - trust.Hops
			if idx < 0 {
				idx = 0
			}
			return chain[idx]

		case config.TrustProxyList:
			chain := append(c.IPs(), remote)
			for i := len(chain) - 1; i > 0; i-- {
				if !containsIP(nets, chain[i]) {
					return chain[i]
				}
			}
			return chain[0]

		default:
			return remote
		}
	}
}

func parseProxyNets(proxies []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		if _, n, err := net.ParseCIDR(p); err == nil {
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(p)
		if ip == nil {
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip = ip.To4()
			bits = 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

func containsIP(nets []*net.IPNet, s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
