package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"endpoint_addr_http":              "www.example:8000",
		"database_dsn":                    "feed.db",
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "12h",
		"reset_token_validity_duration":   "30m",
		"revocation_backend":              "memory",
		"revocation_sweep_interval":       60000000000,
		"s3_bucket":                       "bucket",
		"media_max_size_kb":               2048,
		"smtp_host":                       "smtp.example",
		"smtp_port":                       2525,
		"sms_webhook_url":                 "http://sms.example/send",
		"reset_requests_per_hour":         3,
		"subscriber_queue_limit":          128,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "www.example:8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "feed.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 12*time.Hour, cfg.SessionTokenValidityDuration)
		assert.Equal(t, 30*time.Minute, cfg.ResetTokenValidityDuration)
		assert.Equal(t, "memory", cfg.RevocationBackend)
		assert.Equal(t, time.Minute, cfg.RevocationSweepInterval)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 2048, cfg.MediaMaxSizeKB)
		assert.Equal(t, "smtp.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "http://sms.example/send", cfg.SMSWebhookURL)
		assert.Equal(t, 3, cfg.ResetRequestsPerHour)
		assert.Equal(t, 128, cfg.SubscriberQueueLimit)

		// keys absent from the file keep their defaults
		assert.Equal(t, "us-east-1", cfg.S3Region)
		assert.Equal(t, "no-reply@pointfeed.local", cfg.SMTPFrom)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrGRPC:             "defaults:1234",
			SecretKey:                    "key",
			SessionTokenValidityDuration: 2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.SessionTokenValidityDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
