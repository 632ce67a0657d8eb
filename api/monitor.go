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

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/models"
	"github.com/serverwatch/serverwatch/services"
)

type monitorHandler struct {
	reportManager *services.ReportManager
}

func NewMonitorHandler(reportManager *services.ReportManager) *monitorHandler {
	return &monitorHandler{
		reportManager: reportManager,
	}
}

// Health - service summary for the dashboard and probes
func (mh *monitorHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":           "Server Monitoring API",
		"status":            "online",
		"servers_monitored": mh.reportManager.Count(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Report - ingest one agent snapshot
// @Summary Receive monitoring data from agent scripts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Router /api/report [post]
func (mh *monitorHandler) Report(c *gin.Context) {
	var report models.ServerReport
	if err := c.ShouldBindWith(&report, binding.JSON); err != nil {
		g.Log.Warn("missing required fields", err)
		AbortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := mh.reportManager.SaveReport(&report)
	if err != nil {
		g.Log.Error("failed to store report", report.ServerAlias, err)
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// Statuses - all monitored servers with status recomputed per request
func (mh *monitorHandler) Statuses(c *gin.Context) {
	results, err := mh.reportManager.ListStatuses()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Machines - full host and container inventory
func (mh *monitorHandler) Machines(c *gin.Context) {
	machines, err := mh.reportManager.ListMachines()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

// Containers - containers from the named host's last report
func (mh *monitorHandler) Containers(c *gin.Context) {
	host := c.Param("host")
	containers, err := mh.reportManager.ListContainers(host)
	if err != nil {
		if err == models.ErrServerNotFound {
			AbortWithError(c, http.StatusNotFound, "Host '"+host+"' not found")
			return
		}
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, containers)
}

// Hosts - host selector entries
func (mh *monitorHandler) Hosts(c *gin.Context) {
	hosts, err := mh.reportManager.ListHosts()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"hosts": hosts})
}

// DeleteServer - removes a server and its machine registry entries
// @Security ApiKeyAuth
// @Router /api/server/{alias} [delete]
func (mh *monitorHandler) DeleteServer(c *gin.Context) {
	alias := c.Param("alias")
	if err := mh.reportManager.Delete(alias); err != nil {
		if err == models.ErrServerNotFound {
			AbortWithError(c, http.StatusNotFound, "Server '"+alias+"' not found")
			return
		}
		g.Log.Error("failed to delete server", alias, err)
		AbortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Server '" + alias + "' removed",
	})
}
