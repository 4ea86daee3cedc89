package config

import "time"

const (
	DefaultServerAddr          = "127.0.0.1:50051"
	DefaultOnlineCheckInterval = 3 * time.Second
	DefaultRequestTimeout      = 10 * time.Second
)

// Config is what the client needs to reach a pointfeed server.
type Config struct {
	// ServerEndpointAddr is the host:port of the gRPC listener.
	ServerEndpointAddr string
	// OnlineCheckInterval paces the Ping probe behind the prompt status.
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds unary calls made without their own deadline.
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = DefaultServerAddr
	c.OnlineCheckInterval = DefaultOnlineCheckInterval
	c.RequestTimeout = DefaultRequestTimeout
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
