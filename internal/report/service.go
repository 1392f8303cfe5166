package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/equipment"
	"github.com/biocode-hms/equipment-management/internal/maintenance"
	"github.com/biocode-hms/equipment-management/internal/ticket"
)

// exportLimit caps every export; these are dashboards-to-spreadsheet dumps,
// not a bulk data pipeline.
const exportLimit = 10000

// EquipmentSource, TicketSource and MaintenanceSource are satisfied by the
// postgres repositories of the owning packages.
type EquipmentSource interface {
	List(filter equipment.ListFilter) ([]*equipment.Equipment, int64, error)
}

type TicketSource interface {
	List(filter ticket.ListFilter) ([]*ticket.Ticket, int64, error)
}

type MaintenanceSource interface {
	List(filter maintenance.ListFilter) ([]*maintenance.Schedule, int64, error)
}

type Service struct {
	equipment   EquipmentSource
	tickets     TicketSource
	maintenance MaintenanceSource
	logger      *slog.Logger
}

func NewService(equipmentSource EquipmentSource, ticketSource TicketSource, maintenanceSource MaintenanceSource, logger *slog.Logger) *Service {
	return &Service{
		equipment:   equipmentSource,
		tickets:     ticketSource,
		maintenance: maintenanceSource,
		logger:      logger,
	}
}

func (s *Service) EquipmentReport(actor *auth.User) (*excelize.File, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityExportReports); err != nil {
		return nil, err
	}

	items, _, err := s.equipment.List(equipment.ListFilter{Limit: exportLimit})
	if err != nil {
		return nil, err
	}

	f, sheet := newWorkbook("Equipment")
	writeRow(f, sheet, 1, []interface{}{
		"Asset Tag", "Device Name", "Manufacturer", "Model", "Serial Number",
		"Status", "Criticality", "Repair Count", "Downtime (min)", "Currently Down",
	})
	for i, e := range items {
		writeRow(f, sheet, i+2, []interface{}{
			e.AssetTag, e.DeviceName, deref(e.Manufacturer), deref(e.Model), deref(e.SerialNumber),
			string(e.Status), string(e.Criticality), e.RepairCount, e.TotalDowntimeMinutes, e.IsCurrentlyDown,
		})
	}

	s.logger.Info("equipment report generated", "rows", len(items), "actor_id", actor.ID)
	return f, nil
}

func (s *Service) TicketReport(actor *auth.User) (*excelize.File, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityExportReports); err != nil {
		return nil, err
	}

	items, _, err := s.tickets.List(ticket.ListFilter{Limit: exportLimit})
	if err != nil {
		return nil, err
	}

	f, sheet := newWorkbook("Tickets")
	writeRow(f, sheet, 1, []interface{}{
		"Ticket Code", "Title", "Status", "Priority", "From Department",
		"Equipment", "Reported By", "Created", "Completed",
	})
	for i, t := range items {
		writeRow(f, sheet, i+2, []interface{}{
			t.TicketCode, t.Title, string(t.Status), string(t.Priority), t.FromDepartment,
			t.EquipmentService, t.ReportedBy, formatDate(&t.CreatedAt), formatDate(t.CompletedOn),
		})
	}

	s.logger.Info("ticket report generated", "rows", len(items), "actor_id", actor.ID)
	return f, nil
}

func (s *Service) MaintenanceReport(actor *auth.User) (*excelize.File, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityExportReports); err != nil {
		return nil, err
	}

	items, _, err := s.maintenance.List(maintenance.ListFilter{Limit: exportLimit})
	if err != nil {
		return nil, err
	}

	f, sheet := newWorkbook("Maintenance")
	writeRow(f, sheet, 1, []interface{}{
		"Equipment ID", "Type", "Frequency (days)", "Last Done", "Next Due", "Active",
	})
	for i, m := range items {
		writeRow(f, sheet, i+2, []interface{}{
			m.EquipmentID, string(m.MaintenanceType), m.FrequencyDays,
			formatDate(m.LastMaintenanceDate), formatDate(&m.NextMaintenanceDate), m.IsActive,
		})
	}

	s.logger.Info("maintenance report generated", "rows", len(items), "actor_id", actor.ID)
	return f, nil
}

func newWorkbook(sheet string) (*excelize.File, string) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	return f, sheet
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	cell := fmt.Sprintf("A%d", row)
	// SetSheetRow only fails on malformed cell references.
	_ = f.SetSheetRow(sheet, cell, &values)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
