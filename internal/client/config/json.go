package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/flagx"
	"github.com/dmitrijs2005/pointfeed/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the file named by -c/-config. Fields left
// out of the file keep their current values. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
