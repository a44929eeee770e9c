package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	require.Equal(t, "198.51.100.7", ClientIP(req))

	req.RemoteAddr = "198.51.100.8"
	require.Equal(t, "198.51.100.8", ClientIP(req))

	require.Empty(t, ClientIP(nil))
}
