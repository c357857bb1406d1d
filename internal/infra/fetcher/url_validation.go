// Package fetcher holds the outbound HTTP plumbing shared by article
// enrichment and remote asset downloads: URL validation, a hardened client
// and size-limited reads.
package fetcher

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// sharedAddressSpace is carrier-grade NAT space, where some clouds put their
// metadata endpoints.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// ValidateURL accepts absolute http and https URLs. With denyPrivateIPs the
// host must also resolve only to public unicast addresses, so feed items
// and submissions cannot point the fetcher at the internal network.
// IP literals are checked without a DNS lookup.
func ValidateURL(rawURL string, denyPrivateIPs bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: no host", ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateIP, host)
		}
		return nil
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrInvalidURL, host, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, ip)
		}
	}
	return nil
}

// isPrivateIP reports addresses a fetch must never reach: loopback, RFC 1918
// and fc00::/7, link-local, multicast, unspecified and shared address
// space. IPv4-mapped IPv6 addresses are judged as IPv4.
func isPrivateIP(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}
