package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ameledin/studiovault/internal/flagx"
	"github.com/ameledin/studiovault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "5m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	CollectionID       string         `json:"collection_id"`
	Parallel           int            `json:"parallel"`
	MaxRetries         int            `json:"max_retries"`
	PerAttemptTimeout  timex.Duration `json:"per_attempt_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
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

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.CollectionID = jc.CollectionID
	cfg.Parallel = jc.Parallel
	cfg.MaxRetries = jc.MaxRetries
	cfg.PerAttemptTimeout = time.Duration(jc.PerAttemptTimeout.Duration)
}
