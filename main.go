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

package main

import (
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	cfg "github.com/chryscloud/go-microkit-plugins/config"
	msrv "github.com/chryscloud/go-microkit-plugins/server"
	"github.com/gin-gonic/gin"
	g "github.com/serverwatch/serverwatch/globals"
	r "github.com/serverwatch/serverwatch/router"
	"github.com/serverwatch/serverwatch/services"
)

var defaultConfDir = "/data/serverwatch"

// loadConfig - optional conf.yaml with environment overrides on top
func loadConfig() g.Config {
	var conf g.Config
	if _, err := os.Stat(defaultConfDir + "/conf.yaml"); os.IsNotExist(err) {
		// config file does not exist
		conf = g.Config{
			YamlConfig: cfg.YamlConfig{
				Port: 8080,
				Mode: gin.ReleaseMode,
			},
		}
	} else {
		err := cfg.NewYamlConfig(defaultConfDir+"/conf.yaml", &conf)
		if err != nil {
			g.Log.Error(err, "conf.yaml failed to load")
			panic("Failed to load conf.yaml")
		}
	}
	if conf.Monitor == nil {
		conf.Monitor = &g.MonitorSubconfig{}
	}
	if conf.Portainer == nil {
		conf.Portainer = &g.PortainerSubconfig{}
	}
	applyEnvOverrides(&conf)

	if conf.Monitor.APIKey == "" {
		conf.Monitor.APIKey = g.DefaultAPIKey
		g.Log.Warn("API key not configured, using the insecure default placeholder")
	}
	if conf.Monitor.StaleThresholdSeconds <= 0 {
		conf.Monitor.StaleThresholdSeconds = g.DefaultStaleThresholdSeconds
	}
	return conf
}

func applyEnvOverrides(conf *g.Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		conf.Monitor.APIKey = v
	}
	if v := os.Getenv("STALE_THRESHOLD_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			g.Log.Warn("invalid STALE_THRESHOLD_SECONDS, keeping default", v, err)
		} else {
			conf.Monitor.StaleThresholdSeconds = seconds
		}
	}
	if v := os.Getenv("PORTAINER_URL"); v != "" {
		conf.Portainer.URL = v
	}
	if v := os.Getenv("PORTAINER_API_KEY"); v != "" {
		conf.Portainer.APIKey = v
	}
}

func main() {
	// server wait to shutdown monitoring channels
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	conf := loadConfig()
	g.Conf = conf

	signal.Notify(quit, os.Interrupt)
	defer signal.Stop(quit)

	db, err := services.OpenInMemory()
	if err != nil {
		g.Log.Error("failed to init in-memory store", err)
		os.Exit(1)
	}
	defer db.Close()
	// Storage
	storage := services.NewStorage(db)

	// Services
	reportService := services.NewReportManager(storage, time.Duration(conf.Monitor.StaleThresholdSeconds)*time.Second)

	var portainerService *services.PortainerClient
	if conf.Portainer.URL != "" && conf.Portainer.APIKey != "" {
		portainerService = services.NewPortainerClient(conf.Portainer.URL, conf.Portainer.APIKey)
		if portainerService.HealthCheck() {
			g.Log.Info("portainer connected", conf.Portainer.URL)
		} else {
			g.Log.Warn("portainer configured but unreachable", conf.Portainer.URL)
		}
	} else {
		g.Log.Info("portainer not configured (optional)")
	}

	gin.SetMode(conf.Mode)

	router := msrv.NewAPIRouter(&conf.YamlConfig)
	router = r.ConfigAPI(router, reportService, portainerService)

	// start server
	srv := msrv.Start(&conf.YamlConfig, router, g.Log)
	// wait for server shutdown
	go msrv.Shutdown(srv, g.Log, quit, done)

	g.Log.Info("Server is ready to handle requests at", conf.Port)
	g.Log.Info("stale threshold seconds", conf.Monitor.StaleThresholdSeconds)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		g.Log.Error("Could not listen on %s: %v\n", conf.Port, err)
	}

	<-done
	g.Log.Info("exit")
}
