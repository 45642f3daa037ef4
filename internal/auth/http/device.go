package http

import (
	"net"
	"net/http"
	"strings"

	"github.com/soularenas/soularenas-api/internal/auth/service"
)

// deviceInfoFromUserAgent coarsely classifies the client platform. The
// result is audit metadata only, so misclassification is harmless.
func deviceInfoFromUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows PC"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS Device"
	case strings.Contains(ua, "Android"):
		return "Android Device"
	case strings.Contains(ua, "Macintosh"):
		return "Mac PC"
	default:
		return "Unknown Device"
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func clientMeta(r *http.Request) service.ClientMeta {
	return service.ClientMeta{
		DeviceInfo: deviceInfoFromUserAgent(r.UserAgent()),
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	}
}
