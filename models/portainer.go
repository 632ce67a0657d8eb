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

package models

// VarPair - name/value environment variable pair
type VarPair struct {
	Name  string `json:"name"`  // name of the variable
	Value string `json:"value"` // value of the variable
}

// DeployRequest - deploy a stack from a custom template onto an endpoint
type DeployRequest struct {
	Name       string    `json:"name" binding:"required"`
	TemplateID int       `json:"template_id" binding:"required"`
	EndpointID int       `json:"endpoint_id" binding:"required"`
	EnvVars    []VarPair `json:"env_vars,omitempty"`
}

// AppTemplate - element of the App Template JSON array format. Some custom
// templates store this instead of a plain compose file.
type AppTemplate struct {
	Env        []AppTemplateEnv       `json:"env"`
	Repository *AppTemplateRepository `json:"repository"`
}

type AppTemplateEnv struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Default     string              `json:"default"`
	Select      []AppTemplateSelect `json:"select,omitempty"`
}

type AppTemplateSelect struct {
	Text    string `json:"text"`
	Value   string `json:"value"`
	Default bool   `json:"default,omitempty"`
}

type AppTemplateRepository struct {
	URL       string `json:"url,omitempty"`
	Stackfile string `json:"stackfile"`
}

// TemplateVariable - synthesized Variables entry on an enriched template
type TemplateVariable struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Default     string              `json:"default"`
	Select      []AppTemplateSelect `json:"select,omitempty"`
}

// TemplateFileResponse - Portainer custom_templates/{id}/file response body
type TemplateFileResponse struct {
	FileContent string `json:"FileContent"`
}

// PortainerEndpoint - subset of endpoint details needed for deploy routing
type PortainerEndpoint struct {
	ID        int                `json:"Id"`
	Name      string             `json:"Name"`
	Snapshots []EndpointSnapshot `json:"Snapshots"`
}

// EndpointSnapshot - latest runtime snapshot of an endpoint. No snapshot at all
// means the endpoint is treated as standalone.
type EndpointSnapshot struct {
	Swarm bool `json:"Swarm"`
}

// StackDeployPayload - Portainer stack creation body (string method)
type StackDeployPayload struct {
	Name             string    `json:"name"`
	StackFileContent string    `json:"stackFileContent"`
	Env              []VarPair `json:"env"`
}
