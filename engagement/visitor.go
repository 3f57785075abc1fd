// Package engagement records per-visitor upvotes without storing raw
// visitor data.
package engagement

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// VisitorID derives the anonymous visitor identifier: a keyed one-way hash
// of the client IP and user agent, bucketed by calendar year so identifiers
// rotate yearly and cannot be reversed to recover the underlying signal.
func VisitorID(r *http.Request, secret string, now time.Time) string {
	signal := fmt.Sprintf("%s|%s|%d", clientIP(r), r.UserAgent(), now.Year())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signal))
	return hex.EncodeToString(mac.Sum(nil))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
