package http

import (
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
)

type securityMetrics struct {
	rateLimitHits      atomic.Int64
	authFailures       atomic.Int64
	suspiciousRequests atomic.Int64
}

// Peers in these ranges are reverse proxies we run ourselves; only they may
// speak for the client through forwarding headers.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	return slices.ContainsFunc(trustedProxies, func(p netip.Prefix) bool { return p.Contains(addr) })
}

func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(remote); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

// extractClientIP returns the address rate limits and logs are keyed on.
// Behind a trusted proxy that is the nearest untrusted hop of
// X-Forwarded-For, read right to left, then X-Real-IP.
func extractClientIP(r *http.Request) string {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		return r.RemoteAddr
	}
	if !isTrustedProxy(peer) {
		return peer.String()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !isTrustedProxy(hop) {
			return hop.Unmap().String()
		}
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap().String()
	}
	return peer.String()
}

var (
	probeFragments = []string{
		"../", "..\\", ".env", ".git", ".ssh", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "eval(", "union select",
	}
	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab", "scanner",
	}
	probeMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const (
	maxURLLength   = 2048
	maxForwardHops = 6
)

func containsAny(s string, fragments []string) bool {
	return slices.ContainsFunc(fragments, func(f string) bool { return strings.Contains(s, f) })
}

// suspiciousReason names the first probe signature the request matches, or
// returns "" for an ordinary request. Matching requests are still served;
// the API has no paths these probes could reach.
func suspiciousReason(r *http.Request) string {
	query := r.URL.RawQuery
	if q, err := url.QueryUnescape(query); err == nil {
		query = q
	}

	switch {
	case containsAny(strings.ToLower(r.URL.Path), probeFragments):
		return "path"
	case containsAny(strings.ToLower(query), probeFragments):
		return "query"
	case containsAny(strings.ToLower(r.UserAgent()), scannerAgents):
		return "user_agent"
	case slices.Contains(probeMethods, r.Method):
		return "method"
	case len(r.URL.RequestURI()) > maxURLLength:
		return "url_length"
	case strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxForwardHops:
		return "forward_chain"
	}
	return ""
}
