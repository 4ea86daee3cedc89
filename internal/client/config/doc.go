// Package config resolves the pointfeed client settings.
//
// Values start from the defaults below, are overlaid by a JSON file named
// with -c/-config, and finally by -a (server address), -i (status probe
// interval, seconds) and -t (request timeout, seconds):
//
//	{
//	  "server_endpoint_addr": "feed.example.com:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
