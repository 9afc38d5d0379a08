// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"

	"github.com/spf13/pflag"
)

const (
	HTTPHostKey       = "http-host"
	HTTPPortKey       = "http-port"
	AllowedOriginsKey = "http-allowed-origins"
	GenesisKey        = "genesis"
	ConfigKey         = "config"
)

var errMissingGenesis = errors.New("genesis file is required")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	flags.Uint16(HTTPPortKey, 9650, "Port of the HTTP server")
	flags.StringSlice(AllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin requests")
	flags.String(GenesisKey, "", "Genesis file (required)")
	flags.String(ConfigKey, "", "Chain config file")
}

type Config struct {
	HTTPHost       string
	HTTPPort       uint16
	AllowedOrigins []string
	GenesisPath    string
	ConfigPath     string
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	httpHost, err := flags.GetString(HTTPHostKey)
	if err != nil {
		return nil, err
	}

	httpPort, err := flags.GetUint16(HTTPPortKey)
	if err != nil {
		return nil, err
	}

	allowedOrigins, err := flags.GetStringSlice(AllowedOriginsKey)
	if err != nil {
		return nil, err
	}

	genesisPath, err := flags.GetString(GenesisKey)
	if err != nil {
		return nil, err
	}
	if genesisPath == "" {
		return nil, errMissingGenesis
	}

	configPath, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPHost:       httpHost,
		HTTPPort:       httpPort,
		AllowedOrigins: allowedOrigins,
		GenesisPath:    genesisPath,
		ConfigPath:     configPath,
	}, nil
}
