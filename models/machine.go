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

const (
	MachineTypeHost      = "host"
	MachineTypeContainer = "container"

	MachineStatusOnline  = "online"
	MachineStatusOffline = "offline"
)

// Machine - flattened inventory entry. Hosts use their alias as id, containers
// use {alias}-{containerName} with the host alias as parent. Host status is
// re-derived from report staleness on read; container status is fixed at ingest.
type Machine struct {
	ID     string   `json:"id"`
	Alias  string   `json:"alias"`
	Type   string   `json:"type"` // host, container
	Group  string   `json:"group"`
	Parent string   `json:"parent,omitempty"` // host alias, containers only
	IP     string   `json:"ip"`
	OS     string   `json:"os"` // host OS string, container image for containers
	Labels []string `json:"labels"`
	Status string   `json:"status"` // online, offline
}

// HostSummary - dropdown selector entry for /api/hosts
type HostSummary struct {
	Alias    string `json:"alias"`
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
	Status   string `json:"status"`
}
