package config

import (
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/pointfeed/internal/flagx"
	"github.com/dmitrijs2005/pointfeed/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration, so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	RevocationBackend            string         `json:"revocation_backend"`
	RevocationSweepInterval      timex.Duration `json:"revocation_sweep_interval"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	MediaMaxSizeKB               int            `json:"media_max_size_kb"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	SMTPFrom                     string         `json:"smtp_from"`
	SMSWebhookURL                string         `json:"sms_webhook_url"`
	SMSFrom                      string         `json:"sms_from"`
	ResetRequestsPerHour         int            `json:"reset_requests_per_hour"`
	SubscriberQueueLimit         int            `json:"subscriber_queue_limit"`
}

// parseJson overlays values from the JSON file named by -c/-config onto
// config. Absent or zero-valued keys keep whatever config already holds.
// An unreadable file or invalid JSON panics: the server must not start on a
// half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setString(&config.RevocationBackend, c.RevocationBackend)
	setDuration(&config.RevocationSweepInterval, c.RevocationSweepInterval)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setInt(&config.MediaMaxSizeKB, c.MediaMaxSizeKB)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.SMSWebhookURL, c.SMSWebhookURL)
	setString(&config.SMSFrom, c.SMSFrom)
	setInt(&config.ResetRequestsPerHour, c.ResetRequestsPerHour)
	setInt(&config.SubscriberQueueLimit, c.SubscriberQueueLimit)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
