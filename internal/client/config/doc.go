// Package config loads runtime configuration for the StudioVault uploader CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the broker API
//	-l string   collection id for the batch
//	-n int      number of concurrent transfers
//	-r int      retry budget per file
//	-t int      per-attempt timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "collection_id": "spring-wedding",
//	  "parallel": 4,
//	  "max_retries": 3,
//	  "per_attempt_timeout": "5m"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
