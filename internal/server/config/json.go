package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/goodnight/internal/flagx"
	"github.com/dmitrijs2005/goodnight/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AggregateInterval           timex.Duration `json:"aggregate_interval"`
	AggregateBatchSize          int            `json:"aggregate_batch_size"`
	TriggerToken                string         `json:"trigger_token"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = jc.EndpointAddrHTTP
	}
	if jc.DatabaseDSN != "" {
		config.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		config.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.AggregateInterval.Duration != 0 {
		config.AggregateInterval = jc.AggregateInterval.Duration
	}
	if jc.AggregateBatchSize != 0 {
		config.AggregateBatchSize = jc.AggregateBatchSize
	}
	if jc.TriggerToken != "" {
		config.TriggerToken = jc.TriggerToken
	}
}
