package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ReadUserIP returns the client IP of the request, preferring the headers
// set by the reverse proxy in front of the service.
func ReadUserIP(r *http.Request) (string, error) {
	if ipAddr := r.Header.Get("X-Real-Ip"); ipAddr != "" {
		return parseIP(ipAddr)
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// client, proxy1, proxy2, ...
		return parseIP(strings.Split(forwarded, ",")[0])
	}
	return parseIP(r.RemoteAddr)
}

func parseIP(ipAddr string) (string, error) {
	ipAddr = strings.TrimSpace(ipAddr)
	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return "", fmt.Errorf("ip addr [%s] is invalid", ipAddr)
	}

	return ip.String(), nil
}
