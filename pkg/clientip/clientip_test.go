package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/hyperkit/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, remote: "10.0.0.1:1", want: "1.1.1.1"},
		{name: "leftmost forwarded", headers: map[string]string{"X-Forwarded-For": "3.3.3.3, 10.0.0.2"}, remote: "10.0.0.1:1", want: "3.3.3.3"},
		{name: "invalid header skipped", headers: map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "4.4.4.4"}, remote: "10.0.0.1:1", want: "4.4.4.4"},
		{name: "unspecified rejected", headers: map[string]string{"X-Real-IP": "0.0.0.0"}, remote: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "ipv6", remote: "[::1]:80", want: "::1"},
		{name: "unparsable remote", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}
