package ratelimit

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// KeyGenerator derives a client identity from a request.
type KeyGenerator func(r *http.Request) string

// NewKeyGenerator builds the default derivation chain: the trusted proxy
// header when configured, then the first X-Forwarded-For entry, then the
// remote address, then a hash of the user agent as last resort.
//
// Caveat: without a trusted-proxy allow-list in front of this service, the
// forwarded headers are client-controlled and the key is spoofable. That is
// accepted for best-effort abuse mitigation; set trustedHeader only when a
// proxy guarantees the header.
func NewKeyGenerator(trustedHeader string) KeyGenerator {
	trustedHeader = strings.TrimSpace(trustedHeader)
	return func(r *http.Request) string {
		if trustedHeader != "" {
			if ip := strings.TrimSpace(r.Header.Get(trustedHeader)); ip != "" {
				return "ip:" + ip
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return "ip:" + ip
			}
		}
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return "ip:" + host
		}
		ua := r.Header.Get("User-Agent")
		if ua == "" {
			ua = "unknown"
		}
		return "ua:" + hashString(ua)
	}
}

func hashString(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(h.Sum64(), 36)
}
