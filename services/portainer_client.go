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

package services

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	version "github.com/hashicorp/go-version"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/models"
)

// portainerMinVersion - custom templates and string-based stack creation need
// Portainer 2.x; older upstreams get an advisory log line, not a hard failure.
const portainerMinVersion = "2.0.0"

// PortainerClient - thin wrapper around the Portainer REST API. TLS
// verification is disabled on purpose: Portainer instances in this deployment
// model run with self-signed certificates. The timeout is generous because
// stack creation can pull images for minutes.
type PortainerClient struct {
	url        string
	baseURL    string
	client     *resty.Client
	minVersion *version.Version
}

func NewPortainerClient(url string, apiKey string) *PortainerClient {
	client := resty.New().
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}).
		SetTimeout(10 * time.Minute).
		SetHeader("X-API-Key", apiKey).
		SetHeader("Content-Type", "application/json")

	trimmed := strings.TrimRight(url, "/")
	return &PortainerClient{
		url:        trimmed,
		baseURL:    trimmed + "/api",
		client:     client,
		minVersion: version.Must(version.NewVersion(portainerMinVersion)),
	}
}

// URL - configured Portainer base url, for status responses
func (pc *PortainerClient) URL() string {
	return pc.url
}

// callAPI - executes one request and maps any non-2xx response to an error
// carrying the upstream body. No retries; a dead upstream is reported per call.
func (pc *PortainerClient) callAPI(method string, path string, body interface{}) ([]byte, error) {
	req := pc.client.R()
	if body != nil {
		req = req.SetBody(body)
	}
	resp, err := req.Execute(method, pc.baseURL+path)
	if err != nil {
		g.Log.Error("portainer request failed", method, path, err)
		return nil, err
	}
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return resp.Body(), nil
	}
	return nil, fmt.Errorf("portainer API returned %d: %s", resp.StatusCode(), string(resp.Body()))
}

// Status - raw /status response
func (pc *PortainerClient) Status() (json.RawMessage, error) {
	return pc.callAPI(resty.MethodGet, "/status", nil)
}

// HealthCheck - true iff the status probe succeeds. Transport and HTTP errors
// are swallowed and map to false.
func (pc *PortainerClient) HealthCheck() bool {
	body, err := pc.Status()
	if err != nil {
		return false
	}
	pc.warnOldVersion(body)
	return true
}

func (pc *PortainerClient) warnOldVersion(statusBody []byte) {
	var status struct {
		Version string `json:"Version"`
	}
	if err := json.Unmarshal(statusBody, &status); err != nil || status.Version == "" {
		return
	}
	v, err := version.NewVersion(status.Version)
	if err != nil {
		return
	}
	if v.LessThan(pc.minVersion) {
		g.Log.Warn("portainer version older than supported minimum", status.Version, portainerMinVersion)
	}
}

// Endpoints - all Portainer endpoints (environments), upstream JSON unchanged
func (pc *PortainerClient) Endpoints() (json.RawMessage, error) {
	return pc.callAPI(resty.MethodGet, "/endpoints", nil)
}

// Stacks - all deployed stacks, upstream JSON unchanged
func (pc *PortainerClient) Stacks() (json.RawMessage, error) {
	return pc.callAPI(resty.MethodGet, "/stacks", nil)
}

// Templates - all custom templates, upstream JSON unchanged
func (pc *PortainerClient) Templates() (json.RawMessage, error) {
	return pc.callAPI(resty.MethodGet, "/custom_templates", nil)
}

// Endpoint - endpoint details, used for swarm detection on deploy
func (pc *PortainerClient) Endpoint(endpointID int) (*models.PortainerEndpoint, error) {
	body, err := pc.callAPI(resty.MethodGet, "/endpoints/"+strconv.Itoa(endpointID), nil)
	if err != nil {
		return nil, err
	}
	var endpoint models.PortainerEndpoint
	if err := json.Unmarshal(body, &endpoint); err != nil {
		g.Log.Error("failed to unmarshal endpoint details", endpointID, err)
		return nil, err
	}
	return &endpoint, nil
}

// Template - template metadata, enriched best-effort with variables parsed from
// App-Template-format file content. Enrichment failure of any kind leaves the
// template untouched; it never fails the request.
func (pc *PortainerClient) Template(templateID int) (map[string]interface{}, error) {
	body, err := pc.callAPI(resty.MethodGet, "/custom_templates/"+strconv.Itoa(templateID), nil)
	if err != nil {
		return nil, err
	}
	var template map[string]interface{}
	if err := json.Unmarshal(body, &template); err != nil {
		g.Log.Error("failed to unmarshal template", templateID, err)
		return nil, err
	}

	fileContent, fErr := pc.rawTemplateFile(templateID)
	if fErr != nil {
		return template, nil
	}
	if variables, ok := appTemplateVariables(fileContent); ok {
		template["Variables"] = variables
	}
	return template, nil
}

func (pc *PortainerClient) rawTemplateFile(templateID int) (string, error) {
	body, err := pc.callAPI(resty.MethodGet, "/custom_templates/"+strconv.Itoa(templateID)+"/file", nil)
	if err != nil {
		return "", err
	}
	var file models.TemplateFileResponse
	if err := json.Unmarshal(body, &file); err != nil {
		g.Log.Error("failed to unmarshal template file response", templateID, err)
		return "", err
	}
	return file.FileContent, nil
}

// appTemplateVariables - synthesize Variables entries from App-Template-format
// file content. Returns false when the content is not that format.
func appTemplateVariables(fileContent string) ([]models.TemplateVariable, bool) {
	var parsed []models.AppTemplate
	if err := json.Unmarshal([]byte(fileContent), &parsed); err != nil || len(parsed) == 0 {
		return nil, false
	}
	appTemplate := parsed[0]
	if len(appTemplate.Env) == 0 {
		return nil, false
	}
	variables := make([]models.TemplateVariable, 0, len(appTemplate.Env))
	for _, env := range appTemplate.Env {
		label := env.Label
		if label == "" {
			label = env.Name
		}
		variables = append(variables, models.TemplateVariable{
			Name:        env.Name,
			Label:       label,
			Description: env.Description,
			Default:     env.Default,
			Select:      env.Select,
		})
	}
	return variables, true
}

// TemplateFile - file content of a custom template. App-Template-format files
// resolve to their nested repository stackfile; anything else (plain compose
// text is the common case) passes through verbatim.
func (pc *PortainerClient) TemplateFile(templateID int) (string, error) {
	fileContent, err := pc.rawTemplateFile(templateID)
	if err != nil {
		return "", err
	}
	var parsed []models.AppTemplate
	if jErr := json.Unmarshal([]byte(fileContent), &parsed); jErr == nil && len(parsed) > 0 {
		if repository := parsed[0].Repository; repository != nil && repository.Stackfile != "" {
			return repository.Stackfile, nil
		}
	}
	return fileContent, nil
}

// Deploy - resolves the template file, substitutes every {{NAME}} occurrence
// with the supplied value (plain string replacement, no escaping) and creates
// the stack through the swarm or standalone endpoint depending on the
// endpoint's latest snapshot.
func (pc *PortainerClient) Deploy(name string, templateID int, endpointID int, envVars []models.VarPair) (json.RawMessage, error) {
	fileContent, err := pc.TemplateFile(templateID)
	if err != nil {
		return nil, err
	}

	endpoint, err := pc.Endpoint(endpointID)
	if err != nil {
		return nil, err
	}
	isSwarm := len(endpoint.Snapshots) > 0 && endpoint.Snapshots[0].Swarm

	env := make([]models.VarPair, 0, len(envVars))
	for _, envVar := range envVars {
		if envVar.Name == "" {
			continue
		}
		env = append(env, envVar)
		fileContent = strings.ReplaceAll(fileContent, "{{"+envVar.Name+"}}", envVar.Value)
	}

	payload := &models.StackDeployPayload{
		Name:             name,
		StackFileContent: fileContent,
		Env:              env,
	}
	path := "/stacks/create/standalone/string?endpointId=" + strconv.Itoa(endpointID)
	if isSwarm {
		path = "/stacks/create/swarm/string?endpointId=" + strconv.Itoa(endpointID)
	}
	return pc.callAPI(resty.MethodPost, path, payload)
}

// DeleteStack - any non-2xx upstream response surfaces as an error
func (pc *PortainerClient) DeleteStack(stackID int, endpointID int) error {
	_, err := pc.callAPI(resty.MethodDelete, "/stacks/"+strconv.Itoa(stackID)+"?endpointId="+strconv.Itoa(endpointID), nil)
	return err
}
