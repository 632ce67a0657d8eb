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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/models"
	"github.com/serverwatch/serverwatch/services"
)

const testAPIKey = "test-key"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g.Conf = g.Config{
		Monitor: &g.MonitorSubconfig{
			APIKey:                testAPIKey,
			StaleThresholdSeconds: 300,
		},
		Portainer: &g.PortainerSubconfig{},
	}

	db, err := services.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	reportService := services.NewReportManager(services.NewStorage(db), 300*time.Second)
	return ConfigAPI(gin.New(), reportService, nil)
}

func postReport(t *testing.T, router *gin.Engine, alias string, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	report := models.ServerReport{
		ServerAlias:   alias,
		Hostname:      alias + ".local",
		IP:            "10.0.0.10",
		UptimeSeconds: 3600,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Containers: []models.Container{
			{ID: "aaa", Name: "web", Image: "nginx:latest", State: "running", Created: "2024-05-01"},
		},
	}
	body, err := json.Marshal(&report)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/report", bytes.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doRequest(router *gin.Engine, method string, target string, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthRoot(t *testing.T) {
	router := setupRouter(t)
	w := doRequest(router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "Server Monitoring API" || body["status"] != "online" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if body["servers_monitored"].(float64) != 0 {
		t.Fatalf("expected zero monitored servers, got %v", body["servers_monitored"])
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header on every response")
	}
}

func TestReportRequiresAuth(t *testing.T) {
	router := setupRouter(t)

	if w := postReport(t, router, "node1", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key must 401, got %d", w.Code)
	}
	if w := postReport(t, router, "node1", "Bearer wrong-key"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key must 401, got %d", w.Code)
	}

	// a rejected report performs no mutation
	w := doRequest(router, http.MethodGet, "/api/status", "")
	var status struct {
		Results []models.ServerStatus `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if len(status.Results) != 0 {
		t.Fatal("rejected report must not be stored")
	}
}

func TestReportFlow(t *testing.T) {
	router := setupRouter(t)

	// bare token and Bearer prefix are both accepted
	if w := postReport(t, router, "node1", testAPIKey); w.Code != http.StatusOK {
		t.Fatalf("bare token must be accepted, got %d: %s", w.Code, w.Body.String())
	}
	w := postReport(t, router, "node2", "Bearer "+testAPIKey)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer token must be accepted, got %d", w.Code)
	}
	var receipt models.ReportReceipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatal(err)
	}
	if receipt.Status != "ok" || receipt.ServerAlias != "node2" || receipt.ReceivedAt == "" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	w = doRequest(router, http.MethodGet, "/api/status", "")
	var status struct {
		Results []models.ServerStatus `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if len(status.Results) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(status.Results))
	}
	for _, result := range status.Results {
		if result.Status != models.ServerStatusOK {
			t.Fatalf("fresh report must display ok, got %s", result.Status)
		}
	}

	w = doRequest(router, http.MethodGet, "/api/hosts", "")
	var hosts struct {
		Hosts []models.HostSummary `json:"hosts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hosts); err != nil {
		t.Fatal(err)
	}
	if len(hosts.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts.Hosts))
	}

	w = doRequest(router, http.MethodGet, "/api/machines", "")
	var machines struct {
		Machines []models.Machine `json:"machines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &machines); err != nil {
		t.Fatal(err)
	}
	if len(machines.Machines) != 4 {
		t.Fatalf("expected 2 hosts + 2 containers, got %d", len(machines.Machines))
	}
}

func TestReportValidation(t *testing.T) {
	router := setupRouter(t)
	// server_alias is required
	req := httptest.NewRequest(http.MethodPost, "/api/report", bytes.NewReader([]byte(`{"hostname":"x"}`)))
	req.Header.Set("Authorization", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("report without alias must 400, got %d", w.Code)
	}
}

func TestContainersEndpoint(t *testing.T) {
	router := setupRouter(t)
	postReport(t, router, "node1", testAPIKey)

	w := doRequest(router, http.MethodGet, "/api/docker/node1/containers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var containers []models.Container
	if err := json.Unmarshal(w.Body.Bytes(), &containers); err != nil {
		t.Fatal(err)
	}
	if len(containers) != 1 || containers[0].Name != "web" {
		t.Fatalf("unexpected containers: %+v", containers)
	}

	if w := doRequest(router, http.MethodGet, "/api/docker/unknown/containers", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown host must 404, got %d", w.Code)
	}
}

func TestDeleteServer(t *testing.T) {
	router := setupRouter(t)
	postReport(t, router, "node1", testAPIKey)

	if w := doRequest(router, http.MethodDelete, "/api/server/node1", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete without key must 401, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/api/server/ghost", "Bearer "+testAPIKey); w.Code != http.StatusNotFound {
		t.Fatalf("unknown alias must 404, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/api/server/node1", "Bearer "+testAPIKey); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/machines", "")
	var machines struct {
		Machines []models.Machine `json:"machines"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &machines); err != nil {
		t.Fatal(err)
	}
	if len(machines.Machines) != 0 {
		t.Fatalf("delete must cascade to machine entries, got %d left", len(machines.Machines))
	}
}

func TestPortainerUnconfigured(t *testing.T) {
	router := setupRouter(t)

	for _, target := range []string{
		"/api/portainer/status",
		"/api/portainer/endpoints",
		"/api/portainer/templates",
		"/api/portainer/templates/1",
		"/api/portainer/stacks",
	} {
		if w := doRequest(router, http.MethodGet, target, ""); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s must 503 when portainer is not configured, got %d", target, w.Code)
		}
	}

	body := bytes.NewReader([]byte(`{"name":"s","template_id":1,"endpoint_id":1}`))
	req := httptest.NewRequest(http.MethodPost, "/api/portainer/deploy", body)
	req.Header.Set("Authorization", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("deploy must 503 when portainer is not configured, got %d", w.Code)
	}

	if w := doRequest(router, http.MethodDelete, "/api/portainer/stacks/1?endpoint_id=1", testAPIKey); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("stack delete must 503 when portainer is not configured, got %d", w.Code)
	}
}
