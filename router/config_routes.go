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

package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	api "github.com/serverwatch/serverwatch/api"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/services"
)

// ConfigAPI - configuring RESTapi services. portainerService may be nil when
// the upstream is not configured; its routes then answer 503.
func ConfigAPI(router *gin.Engine, reportService *services.ReportManager, portainerService *services.PortainerClient) *gin.Engine {

	// the dashboard is served from another origin
	router.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
	}))
	router.Use(api.RequestID())

	// APIs
	monitorAPI := api.NewMonitorHandler(reportService)
	portainerAPI := api.NewPortainerHandler(portainerService)
	auth := api.APIKeyRequired(g.Conf.Monitor.APIKey)

	router.GET("/", monitorAPI.Health)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("report", auth, monitorAPI.Report)
		apiGroup.GET("status", monitorAPI.Statuses)
		apiGroup.GET("machines", monitorAPI.Machines)
		apiGroup.GET("docker/:host/containers", monitorAPI.Containers)
		apiGroup.GET("hosts", monitorAPI.Hosts)
		apiGroup.DELETE("server/:alias", auth, monitorAPI.DeleteServer)

		apiGroup.GET("portainer/status", portainerAPI.Status)
		apiGroup.GET("portainer/endpoints", portainerAPI.Endpoints)
		apiGroup.GET("portainer/templates", portainerAPI.Templates)
		apiGroup.GET("portainer/templates/:id", portainerAPI.Template)
		apiGroup.GET("portainer/stacks", portainerAPI.Stacks)
		apiGroup.POST("portainer/deploy", auth, portainerAPI.Deploy)
		apiGroup.DELETE("portainer/stacks/:id", auth, portainerAPI.DeleteStack)
	}

	return router
}
