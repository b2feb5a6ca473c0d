// Package config loads runtime configuration for the vidtube CLI.
//
// Sources, in increasing precedence: built-in defaults, an optional JSON
// file selected with -c/-config, then command-line flags.
//
//	-a string     address:port of the vidtube gRPC endpoint
//	-timeout int  per-request timeout (seconds)
//
// The JSON file accepts durations as "10s" style strings or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s"
//	}
package config
