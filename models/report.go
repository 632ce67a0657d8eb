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
	// server status as displayed on the dashboard
	ServerStatusOK   = "ok"
	ServerStatusDown = "down"

	// container state strings as reported by agents (docker states)
	ContainerStateRunning = "running"
	ContainerStateExited  = "exited"
	ContainerStatePaused  = "paused"
)

// LoadAvg - 1/5/15 minute load averages. The short json keys match the agent scripts.
type LoadAvg struct {
	OneMin     float64 `json:"1m"`
	FiveMin    float64 `json:"5m"`
	FifteenMin float64 `json:"15m"`
}

type CPU struct {
	Percent float64 `json:"percent"`
	LoadAvg LoadAvg `json:"loadavg"`
}

type Memory struct {
	TotalGB float64 `json:"total_gb"`
	UsedGB  float64 `json:"used_gb"`
	Percent float64 `json:"percent"`
}

type Disk struct {
	Mountpoint string  `json:"mountpoint"`
	Fstype     string  `json:"fstype"`
	FreeGB     float64 `json:"free_gb"`
	TotalGB    float64 `json:"total_gb"`
	Percent    float64 `json:"percent"`
}

// LoggedUser - one logged-in session on the host
type LoggedUser struct {
	Name    string `json:"name"`
	TTY     string `json:"tty"`
	Host    string `json:"host"`
	Started string `json:"started"`
}

type GPUProcess struct {
	PID          int    `json:"pid"`
	Username     string `json:"username"`
	Cmd          string `json:"cmd"`
	UsedMemoryMB int    `json:"used_memory_mb"`
	Type         string `json:"type,omitempty"` // C for compute, G for graphics
}

type GPU struct {
	Index              int          `json:"index"`
	Name               string       `json:"name"`
	UtilizationPct     float64      `json:"utilization_pct"`
	MemoryUsedMB       int          `json:"memory_used_mb"`
	MemoryTotalMB      int          `json:"memory_total_mb"`
	TemperatureCelsius *float64     `json:"temperature_celsius,omitempty"`
	FanSpeedPct        *int         `json:"fan_speed_pct,omitempty"`
	PowerDrawWatts     *float64     `json:"power_draw_watts,omitempty"`
	Processes          []GPUProcess `json:"processes"`
}

// Container - container snapshot as collected on the host, not queried live
type Container struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	State   string  `json:"state"` // running, exited, paused
	Created string  `json:"created"`
	Ports   string  `json:"ports,omitempty"`
	CPUPct  float64 `json:"cpu_pct"`
	MemMB   int     `json:"mem_mb"`
}

// ServerReport - one agent snapshot. server_alias is the primary key of the store.
type ServerReport struct {
	ServerAlias   string       `json:"server_alias" binding:"required"`
	Hostname      string       `json:"hostname"`
	IP            string       `json:"ip"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	CPU           CPU          `json:"cpu"`
	Memory        Memory       `json:"memory"`
	Disks         []Disk       `json:"disks"`
	Users         []LoggedUser `json:"users"`
	GPUs          []GPU        `json:"gpus"`
	Containers    []Container  `json:"containers"`
	Timestamp     string       `json:"timestamp"` // agent-side collection time

	// machine metadata (optional)
	MachineType string   `json:"machine_type"`
	Group       string   `json:"group"`
	OS          string   `json:"os"`
	Labels      []string `json:"labels"`
}

// Defaults fills optional metadata for agents that predate the machine registry
// and normalizes absent lists so responses serialize as [] instead of null.
func (r *ServerReport) Defaults() {
	if r.MachineType == "" {
		r.MachineType = MachineTypeHost
	}
	if r.Group == "" {
		r.Group = "default"
	}
	if r.OS == "" {
		r.OS = "Unknown"
	}
	if r.Disks == nil {
		r.Disks = []Disk{}
	}
	if r.Users == nil {
		r.Users = []LoggedUser{}
	}
	if r.GPUs == nil {
		r.GPUs = []GPU{}
	}
	if r.Containers == nil {
		r.Containers = []Container{}
	}
	if r.Labels == nil {
		r.Labels = []string{}
	}
}

// ServerRecord - stored form of a report. received_at is server-assigned on
// ingest; status is recomputed from it on every read and never trusted as stored.
type ServerRecord struct {
	ServerReport
	ReceivedAt string `json:"received_at"` // RFC3339 UTC
	Status     string `json:"status"`      // ok or down
}

// ServerStatus - dashboard projection of a server record. Containers, labels
// and group are deliberately excluded.
type ServerStatus struct {
	ServerAlias   string       `json:"server_alias"`
	Status        string       `json:"status"`
	Hostname      string       `json:"hostname"`
	IP            string       `json:"ip"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	CPU           CPU          `json:"cpu"`
	Memory        Memory       `json:"memory"`
	Disks         []Disk       `json:"disks"`
	Users         []LoggedUser `json:"users"`
	GPUs          []GPU        `json:"gpus"`
	Timestamp     string       `json:"timestamp"`
	OS            string       `json:"os"`
}

// ReportReceipt - response body for an accepted report
type ReportReceipt struct {
	Status      string `json:"status"`
	ServerAlias string `json:"server_alias"`
	ReceivedAt  string `json:"received_at"`
}
