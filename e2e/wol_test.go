//go:build e2e

package e2e

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/fgeck/wakeonlan/internal/services/runner"
	"github.com/fgeck/wakeonlan/internal/services/wol"
	mdwol "github.com/mdlayher/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestWOL_Loopback_E2E(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	port := conn.LocalAddr().(*net.UDPAddr).Port

	svc := runner.New(testLogger(), true)

	results, err := svc.Run(context.Background(), models.Config{}, []models.HostConfig{
		{Name: "loopback", MACAddress: "00:0a:e4:4b:b0:94", Address: "127.0.0.1", Port: strconv.Itoa(port)},
	}, map[string]any{"requestId": 42})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "000ae44bb094", results[0].MACAddress)
	assert.Equal(t, port, results[0].Port)
	assert.Equal(t, 42, results[0].Extra["requestId"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, wol.MagicPacketSize, n)

	var mp mdwol.MagicPacket
	require.NoError(t, mp.UnmarshalBinary(buf[:n]))
	assert.Equal(t, "00:0a:e4:4b:b0:94", mp.Target.String())
}

// RealWOL tests - only run if explicitly configured
func TestRealWOL_E2E(t *testing.T) {
	mac := os.Getenv("TEST_WOL_MAC")
	if mac == "" {
		t.Skip("TEST_WOL_MAC not set")
	}

	svc := wol.New(testLogger())

	done := make(chan models.WakeResult, 1)
	err := svc.WakeAsync(context.Background(), models.WakeRequest{
		MACAddress: mac,
		Address:    os.Getenv("TEST_WOL_ADDRESS"),
		OnComplete: func(r models.WakeResult) { done <- r },
	})
	require.NoError(t, err)

	select {
	case result := <-done:
		assert.Equal(t, models.WakeStatusSent, result.Status)
		assert.NoError(t, result.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback not invoked")
	}
}
