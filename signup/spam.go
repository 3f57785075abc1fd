package signup

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/burrowblog/burrow/config"
)

// Keywords that only show up in the titles of spam blogs.
var spamKeywords = []string{
	"court records", "insurance", "seo", "gamble", "gambling",
	"crypto", "marketing", "casino", "escort",
}

// SpamChecker gates signups with a honeypot pass and a DNS blocklist
// lookup of the client IP.
type SpamChecker struct {
	zone     string
	resolver *net.Resolver
	timeout  time.Duration
}

func NewSpamChecker(c map[string]string) *SpamChecker {
	return &SpamChecker{
		zone:     config.GetString(c, "DNSBL_ZONE", "all.s5h.net"),
		resolver: net.DefaultResolver,
		timeout:  time.Duration(config.GetInt(c, "DNSBL_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}

// Honeypot reports whether the request tripped a trap: hidden form fields
// only bots fill in, or a spam keyword in the blog title.
func (c *SpamChecker) Honeypot(req Request) bool {
	if req.HoneypotDate != "" || req.HoneypotName != "" {
		return true
	}
	title := strings.ToLower(req.Title)
	for _, keyword := range spamKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

// Blacklisted checks the IP against the configured DNSBL zone. A resolvable
// reversed-octet name under the zone means the IP is listed. Lookup errors
// count as not listed: the blocklist being down must not block signups.
func (c *SpamChecker) Blacklisted(ctx context.Context, ip string) bool {
	if c.zone == "" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	v4 := parsed.To4()
	if v4 == nil {
		// The common zones only list IPv4 addresses.
		return false
	}

	octets := strings.Split(v4.String(), ".")
	reversed := octets[3] + "." + octets[2] + "." + octets[1] + "." + octets[0]

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addrs, err := c.resolver.LookupHost(ctx, reversed+"."+c.zone)
	return err == nil && len(addrs) > 0
}
