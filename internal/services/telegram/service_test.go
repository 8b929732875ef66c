package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fgeck/wakeonlan/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() models.TelegramConfig {
	return models.TelegramConfig{
		BotToken: "123456:ABC-DEF",
		ChatID:   "-100123456789",
	}
}

func sentResult(host, mac string) models.WakeResult {
	return models.WakeResult{
		MACAddress: mac,
		Address:    "192.168.1.255",
		Port:       9,
		Status:     models.WakeStatusSent,
		Host:       host,
	}
}

func TestSendNotification_Success(t *testing.T) {
	var capturedRequest *http.Request
	var capturedBody sendMessageRequest

	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			capturedRequest = req
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &capturedBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":true}")),
			}, nil
		},
	}

	svc := NewWithClient(testLogger(), httpClient, "https://api.telegram.org")

	msg := models.TelegramMessage{
		Host:      "server1",
		StartTime: time.Now().Add(-time.Second),
		Duration:  20 * time.Millisecond,
		Results:   []models.WakeResult{sentResult("nas", "000ae44bb094")},
	}

	result, err := svc.SendNotification(context.Background(), testConfig(), msg)

	require.NoError(t, err)
	assert.True(t, result.MessageSent)
	assert.Nil(t, result.Error)

	// Verify request
	assert.Equal(t, http.MethodPost, capturedRequest.Method)
	assert.Contains(t, capturedRequest.URL.String(), "/bot123456:ABC-DEF/sendMessage")
	assert.Equal(t, "application/json", capturedRequest.Header.Get("Content-Type"))

	// Verify body
	assert.Equal(t, "-100123456789", capturedBody.ChatID)
	assert.Equal(t, "HTML", capturedBody.ParseMode)
	assert.Contains(t, capturedBody.Text, "Wake-on-LAN Sent")
	assert.Contains(t, capturedBody.Text, "nas")
}

func TestSendNotification_FailureMessage(t *testing.T) {
	var capturedBody sendMessageRequest

	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &capturedBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{}")),
			}, nil
		},
	}

	svc := NewWithClient(testLogger(), httpClient, "https://api.telegram.org")

	failed := sentResult("desktop", "aabbccddeeff")
	failed.Status = models.WakeStatusFailed
	failed.Err = errors.New("failed to open UDP socket: permission denied")

	msg := models.TelegramMessage{
		Host:      "server1",
		StartTime: time.Now(),
		Duration:  time.Millisecond,
		Results:   []models.WakeResult{sentResult("nas", "000ae44bb094"), failed},
	}

	result, err := svc.SendNotification(context.Background(), testConfig(), msg)

	require.NoError(t, err)
	assert.True(t, result.MessageSent)

	// Verify message content
	assert.Contains(t, capturedBody.Text, "Wake-on-LAN Failed")
	assert.Contains(t, capturedBody.Text, "desktop")
	assert.Contains(t, capturedBody.Text, "permission denied")
}

func TestSendNotification_HTTPError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		},
	}

	svc := NewWithClient(testLogger(), httpClient, "https://api.telegram.org")

	msg := models.TelegramMessage{Host: "server1"}

	result, err := svc.SendNotification(context.Background(), testConfig(), msg)

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.NotNil(t, result.Error)
	assert.Contains(t, result.Error.Error(), "failed to send request")
}

func TestSendNotification_APIError(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(strings.NewReader("{\"ok\":false}")),
			}, nil
		},
	}

	svc := NewWithClient(testLogger(), httpClient, "https://api.telegram.org")

	msg := models.TelegramMessage{Host: "server1"}

	result, err := svc.SendNotification(context.Background(), testConfig(), msg)

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.NotNil(t, result.Error)
	assert.Contains(t, result.Error.Error(), "status 400")
}

func TestFormatMessage_Success(t *testing.T) {
	svc := New(testLogger())

	bare := sentResult("", "aabbccddeeff")
	bare.Port = 7

	msg := models.TelegramMessage{
		Host:      "myserver",
		StartTime: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Duration:  15 * time.Millisecond,
		Results:   []models.WakeResult{sentResult("nas", "000ae44bb094"), bare},
	}

	result := svc.formatMessage(msg)

	assert.Contains(t, result, "Wake-on-LAN Sent")
	assert.Contains(t, result, "myserver")
	assert.Contains(t, result, "2024-01-15 10:30:00")
	assert.Contains(t, result, "nas: <code>000ae44bb094</code>")
	assert.Contains(t, result, "192.168.1.255:9 sent")
	// Ad hoc targets have no host name and fall back to the MAC address.
	assert.Contains(t, result, "aabbccddeeff: <code>aabbccddeeff</code>")
	assert.Contains(t, result, "192.168.1.255:7 sent")
}

func TestFormatMessage_Failure(t *testing.T) {
	svc := New(testLogger())

	failed := sentResult("<nas>", "000ae44bb094")
	failed.Status = models.WakeStatusFailed
	failed.Err = errors.New("network is unreachable")

	msg := models.TelegramMessage{
		Host:      "myserver",
		StartTime: time.Now(),
		Duration:  time.Millisecond,
		Results:   []models.WakeResult{failed},
	}

	result := svc.formatMessage(msg)

	assert.Contains(t, result, "Wake-on-LAN Failed")
	assert.Contains(t, result, "&lt;nas&gt;")
	assert.Contains(t, result, "failed")
	assert.Contains(t, result, "network is unreachable")
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"<script>", "&lt;script&gt;"},
		{"a & b", "a &amp; b"},
		{"<>&", "&lt;&gt;&amp;"},
		{"normal text", "normal text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeHTML(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSendNotification_ContextCancelled(t *testing.T) {
	httpClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, context.Canceled
		},
	}

	svc := NewWithClient(testLogger(), httpClient, "https://api.telegram.org")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := models.TelegramMessage{Host: "server1"}

	result, err := svc.SendNotification(ctx, testConfig(), msg)

	require.NoError(t, err)
	assert.False(t, result.MessageSent)
	assert.NotNil(t, result.Error)
}
