// Package middleware holds HTTP-boundary policies: websocket origin checks
// and request rate limiting for the non-transport surface.
package middleware

import (
	"net/http"
	"strings"
)

// CheckOrigin returns the upgrader origin policy. An empty allow-list admits
// any origin, the development default. Matching is exact against the Origin
// header, case-insensitive on the host part as browsers normalize it anyway.
func CheckOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(strings.ToLower(o))
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := strings.ToLower(r.Header.Get("Origin"))
		if origin == "" {
			// Non-browser clients send no Origin; let them through.
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
