package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectError{Endpoint: "http://127.0.0.1:9222", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "http://127.0.0.1:9222")
}

func TestLaunchErrorUnwrap(t *testing.T) {
	cause := errors.New("no usable sandbox")
	err := &LaunchError{Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "failed to launch")
}

func TestCutFlag(t *testing.T) {
	tests := []struct {
		arg        string
		wantName   string
		wantValues []string
	}{
		{arg: "--disable-gpu", wantName: "disable-gpu"},
		{arg: "disable-gpu", wantName: "disable-gpu"},
		{arg: "--lang=en-US", wantName: "lang", wantValues: []string{"en-US"}},
		{arg: "window-size=800,600", wantName: "window-size", wantValues: []string{"800,600"}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, values := cutFlag(tt.arg)
			require.Equal(t, tt.wantName, name)
			require.Equal(t, tt.wantValues, values)
		})
	}
}

func TestChannelBinaryUnknown(t *testing.T) {
	_, err := channelBinary("nightly")
	require.Error(t, err)
}

func TestChannelBinaryStableUsesDefaultDiscovery(t *testing.T) {
	bin, err := channelBinary("stable")
	require.NoError(t, err)
	require.Empty(t, bin)
}
