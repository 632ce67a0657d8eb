// Copyright 2024 ServerWatch Authors All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package globals

import (
	cfg "github.com/chryscloud/go-microkit-plugins/config"
	mclog "github.com/chryscloud/go-microkit-plugins/log"
)

const (
	// DefaultAPIKey is a placeholder only. Real deployments must override it
	// through conf.yaml or the API_KEY environment variable.
	DefaultAPIKey = "your-secret-api-key-change-in-production"

	// DefaultStaleThresholdSeconds - report age after which a server displays as down
	DefaultStaleThresholdSeconds = 300
)

// Conf global config
var Conf Config

// Log global wide logging
var Log mclog.Logger

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	Monitor        *MonitorSubconfig   `yaml:"monitor"`
	Portainer      *PortainerSubconfig `yaml:"portainer"`
}

// MonitorSubconfig - report store settings
type MonitorSubconfig struct {
	APIKey                string `yaml:"api_key"`                 // shared token for agents and admin routes
	StaleThresholdSeconds int    `yaml:"stale_threshold_seconds"` // seconds since last report before a server counts as down
}

// PortainerSubconfig - external orchestration API, optional. The proxy stays
// disabled unless both the url and the api key are set.
type PortainerSubconfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

func init() {
	l, err := mclog.NewZapLogger("info")
	if err != nil {
		panic("failed to initalize logging")
	}
	Log = l
}
