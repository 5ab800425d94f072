package pkg

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUserIP(t *testing.T) {
	cases := []struct {
		name          string
		realIP        string
		forwardedFor  string
		remoteAddr    string
		expectedIP    string
		expectedError bool
	}{
		{name: "remote addr", remoteAddr: "83.12.53.65:2145", expectedIP: "83.12.53.65"},
		{name: "remote addr ipv6", remoteAddr: "[::1]:8080", expectedIP: "::1"},
		{name: "real ip header", realIP: "111.12.56.65", remoteAddr: "172.20.0.1:60102", expectedIP: "111.12.56.65"},
		{name: "forwarded for", forwardedFor: "111.12.56.65, 10.0.0.2", remoteAddr: "172.20.0.1:60102", expectedIP: "111.12.56.65"},
		{name: "real ip wins", realIP: "83.12.53.65", forwardedFor: "111.12.56.65", expectedIP: "83.12.53.65"},
		{name: "invalid", remoteAddr: "not-an-ip", expectedError: true},
		{name: "invalid header", realIP: "172.0.0.1.5", expectedError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/posts", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.realIP != "" {
				req.Header.Set("X-Real-Ip", tc.realIP)
			}
			if tc.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tc.forwardedFor)
			}

			ip, err := ReadUserIP(req)
			if tc.expectedError {
				require.Error(t, err)
				assert.Empty(t, ip)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIP, ip)
		})
	}
}
