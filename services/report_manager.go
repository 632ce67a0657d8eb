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
	"encoding/json"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	g "github.com/serverwatch/serverwatch/globals"
	"github.com/serverwatch/serverwatch/models"
)

// ReportManager - owns the latest report per server and the flattened machine
// registry. Every write is a whole-record replacement inside one transaction,
// so concurrent ingests of the same alias resolve to plain last-write-wins.
type ReportManager struct {
	storage   *Storage
	threshold time.Duration
}

func NewReportManager(storage *Storage, staleThreshold time.Duration) *ReportManager {
	return &ReportManager{
		storage:   storage,
		threshold: staleThreshold,
	}
}

func (rm *ReportManager) freshness(receivedAt string) Freshness {
	return CheckFreshness(receivedAt, rm.threshold, time.Now())
}

// SaveReport - upserts the server record and re-derives the host machine entry
// plus one machine entry per reported container. Container entries that
// disappeared from a later report keep their old registry entry; the delete
// endpoint is the only cleanup path.
func (rm *ReportManager) SaveReport(report *models.ServerReport) (*models.ReportReceipt, error) {
	report.Defaults()

	record := &models.ServerRecord{
		ServerReport: *report,
		ReceivedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Status:       models.ServerStatusOK,
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		g.Log.Error("failed to marshal server record", report.ServerAlias, err)
		return nil, err
	}
	if err := rm.storage.Put(TablePrefixServer, report.ServerAlias, recordBytes); err != nil {
		g.Log.Error("failed to store server record", report.ServerAlias, err)
		return nil, err
	}

	host := &models.Machine{
		ID:     report.ServerAlias,
		Alias:  report.ServerAlias,
		Type:   report.MachineType,
		Group:  report.Group,
		IP:     report.IP,
		OS:     report.OS,
		Labels: report.Labels,
		Status: models.MachineStatusOnline,
	}
	if err := rm.putMachine(host); err != nil {
		return nil, err
	}

	for _, container := range report.Containers {
		status := models.MachineStatusOffline
		if container.State == models.ContainerStateRunning {
			status = models.MachineStatusOnline
		}
		machine := &models.Machine{
			ID:     report.ServerAlias + "-" + container.Name,
			Alias:  container.Name,
			Type:   models.MachineTypeContainer,
			Group:  report.Group,
			Parent: report.ServerAlias,
			IP:     report.IP,
			OS:     container.Image,
			Labels: []string{"container", container.State},
			Status: status,
		}
		if err := rm.putMachine(machine); err != nil {
			return nil, err
		}
	}

	return &models.ReportReceipt{
		Status:      models.ServerStatusOK,
		ServerAlias: report.ServerAlias,
		ReceivedAt:  record.ReceivedAt,
	}, nil
}

func (rm *ReportManager) putMachine(machine *models.Machine) error {
	machineBytes, err := json.Marshal(machine)
	if err != nil {
		g.Log.Error("failed to marshal machine entry", machine.ID, err)
		return err
	}
	if err := rm.storage.Put(TablePrefixMachine, machine.ID, machineBytes); err != nil {
		g.Log.Error("failed to store machine entry", machine.ID, err)
		return err
	}
	return nil
}

func (rm *ReportManager) listServers() ([]*models.ServerRecord, error) {
	serverMap, err := rm.storage.List(TablePrefixServer)
	if err != nil {
		g.Log.Error("failed to list server records", err)
		return nil, err
	}
	records := make([]*models.ServerRecord, 0, len(serverMap))
	for alias, recordBytes := range serverMap {
		var record models.ServerRecord
		if err := json.Unmarshal(recordBytes, &record); err != nil {
			g.Log.Error("failed to unmarshal server record", alias, err)
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

// ListStatuses - dashboard projection of every server record with status
// recomputed from report age. Status is never trusted from storage.
func (rm *ReportManager) ListStatuses() ([]models.ServerStatus, error) {
	records, err := rm.listServers()
	if err != nil {
		return nil, err
	}
	statuses := make([]models.ServerStatus, 0, len(records))
	for _, record := range records {
		status := models.ServerStatusOK
		if rm.freshness(record.ReceivedAt).Down() {
			status = models.ServerStatusDown
		}
		statuses = append(statuses, models.ServerStatus{
			ServerAlias:   record.ServerAlias,
			Status:        status,
			Hostname:      record.Hostname,
			IP:            record.IP,
			UptimeSeconds: record.UptimeSeconds,
			CPU:           record.CPU,
			Memory:        record.Memory,
			Disks:         record.Disks,
			Users:         record.Users,
			GPUs:          record.GPUs,
			Timestamp:     record.Timestamp,
			OS:            record.OS,
		})
	}
	return statuses, nil
}

// ListMachines - full registry. Host entries with a matching server record get
// their status re-derived from report age; container entries keep the status
// fixed at ingest time.
func (rm *ReportManager) ListMachines() ([]models.Machine, error) {
	machineMap, err := rm.storage.List(TablePrefixMachine)
	if err != nil {
		g.Log.Error("failed to list machine registry", err)
		return nil, err
	}
	machines := make([]models.Machine, 0, len(machineMap))
	for id, machineBytes := range machineMap {
		var machine models.Machine
		if err := json.Unmarshal(machineBytes, &machine); err != nil {
			g.Log.Error("failed to unmarshal machine entry", id, err)
			return nil, err
		}
		if machine.Type == models.MachineTypeHost {
			recordBytes, gErr := rm.storage.Get(TablePrefixServer, machine.ID)
			if gErr == nil {
				var record models.ServerRecord
				if uErr := json.Unmarshal(recordBytes, &record); uErr == nil {
					if rm.freshness(record.ReceivedAt).Down() {
						machine.Status = models.MachineStatusOffline
					} else {
						machine.Status = models.MachineStatusOnline
					}
				}
			} else if gErr != badger.ErrKeyNotFound {
				g.Log.Warn("failed to read server record for machine", machine.ID, gErr)
			}
		}
		machines = append(machines, machine)
	}
	return machines, nil
}

// ListContainers - containers from the host's last report
func (rm *ReportManager) ListContainers(host string) ([]models.Container, error) {
	recordBytes, err := rm.storage.Get(TablePrefixServer, host)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, models.ErrServerNotFound
		}
		g.Log.Error("failed to read server record", host, err)
		return nil, err
	}
	var record models.ServerRecord
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		g.Log.Error("failed to unmarshal server record", host, err)
		return nil, err
	}
	if record.Containers == nil {
		return []models.Container{}, nil
	}
	return record.Containers, nil
}

// ListHosts - host selector entries, status derived from report age
func (rm *ReportManager) ListHosts() ([]models.HostSummary, error) {
	records, err := rm.listServers()
	if err != nil {
		return nil, err
	}
	hosts := make([]models.HostSummary, 0, len(records))
	for _, record := range records {
		if record.MachineType != "" && record.MachineType != models.MachineTypeHost {
			continue
		}
		status := models.MachineStatusOnline
		if rm.freshness(record.ReceivedAt).Down() {
			status = models.MachineStatusOffline
		}
		hosts = append(hosts, models.HostSummary{
			Alias:    record.ServerAlias,
			Hostname: record.Hostname,
			IP:       record.IP,
			Status:   status,
		})
	}
	return hosts, nil
}

// Delete - removes the server record and cascades over the machine registry:
// the host's own entry plus every entry parented to the alias.
func (rm *ReportManager) Delete(alias string) error {
	if _, err := rm.storage.Get(TablePrefixServer, alias); err != nil {
		if err == badger.ErrKeyNotFound {
			return models.ErrServerNotFound
		}
		g.Log.Error("failed to read server record", alias, err)
		return err
	}
	if err := rm.storage.Del(TablePrefixServer, alias); err != nil {
		g.Log.Error("failed to delete server record", alias, err)
		return err
	}

	machineMap, err := rm.storage.List(TablePrefixMachine)
	if err != nil {
		g.Log.Error("failed to list machine registry", err)
		return err
	}
	for id, machineBytes := range machineMap {
		var machine models.Machine
		if uErr := json.Unmarshal(machineBytes, &machine); uErr != nil {
			g.Log.Error("failed to unmarshal machine entry", id, uErr)
			continue
		}
		if id == alias || machine.Parent == alias {
			if dErr := rm.storage.Del(TablePrefixMachine, id); dErr != nil {
				g.Log.Error("failed to delete machine entry", id, dErr)
				return dErr
			}
		}
	}
	return nil
}

// Count - number of monitored servers, for the health endpoint
func (rm *ReportManager) Count() int {
	serverMap, err := rm.storage.List(TablePrefixServer)
	if err != nil {
		g.Log.Error("failed to count server records", err)
		return 0
	}
	return len(serverMap)
}
