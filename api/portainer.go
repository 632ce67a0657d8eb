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
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/models"
	"github.com/serverwatch/serverwatch/services"
)

// portainerHandler - proxy routes. portainer is nil when the upstream is not
// configured; every route answers 503 in that case instead of attempting a call.
type portainerHandler struct {
	portainer *services.PortainerClient
}

func NewPortainerHandler(portainer *services.PortainerClient) *portainerHandler {
	return &portainerHandler{
		portainer: portainer,
	}
}

func (ph *portainerHandler) configured(c *gin.Context) bool {
	if ph.portainer == nil {
		AbortWithError(c, http.StatusServiceUnavailable, "Portainer not configured")
		return false
	}
	return true
}

// Status - connection probe against the upstream
func (ph *portainerHandler) Status(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	status := "disconnected"
	if ph.portainer.HealthCheck() {
		status = "connected"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "url": ph.portainer.URL()})
}

// Endpoints - upstream environments, JSON passed through unchanged
func (ph *portainerHandler) Endpoints(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	endpoints, err := ph.portainer.Endpoints()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, "Failed to fetch endpoints: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}

// Templates - custom templates, JSON passed through unchanged
func (ph *portainerHandler) Templates(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	templates, err := ph.portainer.Templates()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, "Failed to fetch templates: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// Template - one template, enriched with variables when the file content is in
// App Template format
func (ph *portainerHandler) Template(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, "invalid template id")
		return
	}
	template, err := ph.portainer.Template(templateID)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, "Failed to fetch template: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, template)
}

// Stacks - deployed stacks, JSON passed through unchanged
func (ph *portainerHandler) Stacks(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	stacks, err := ph.portainer.Stacks()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, "Failed to fetch stacks: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"stacks": stacks})
}

// Deploy - create a stack from a custom template
// @Security ApiKeyAuth
// @Router /api/portainer/deploy [post]
func (ph *portainerHandler) Deploy(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	var request models.DeployRequest
	if err := c.ShouldBindWith(&request, binding.JSON); err != nil {
		g.Log.Warn("missing required fields", err)
		AbortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	stack, err := ph.portainer.Deploy(request.Name, request.TemplateID, request.EndpointID, request.EnvVars)
	if err != nil {
		g.Log.Error("stack deployment failed", request.Name, err)
		AbortWithError(c, http.StatusInternalServerError, "Deployment failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stack": stack})
}

// DeleteStack - remove a deployed stack
// @Security ApiKeyAuth
// @Router /api/portainer/stacks/{id} [delete]
func (ph *portainerHandler) DeleteStack(c *gin.Context) {
	if !ph.configured(c) {
		return
	}
	stackID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, "invalid stack id")
		return
	}
	endpointID, err := strconv.Atoi(c.Query("endpoint_id"))
	if err != nil {
		AbortWithError(c, http.StatusBadRequest, "endpoint_id required")
		return
	}
	if err := ph.portainer.DeleteStack(stackID, endpointID); err != nil {
		g.Log.Error("failed to delete stack", stackID, err)
		AbortWithError(c, http.StatusInternalServerError, "Failed to delete stack: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Stack %d deleted", stackID),
	})
}
