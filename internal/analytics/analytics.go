package analytics

// DowntimeEntry ranks one asset by accumulated downtime.
type DowntimeEntry struct {
	EquipmentID          string  `json:"equipment_id"`
	AssetTag             string  `json:"asset_tag"`
	DeviceName           string  `json:"device_name"`
	Status               string  `json:"status"`
	TotalDowntimeMinutes int64   `json:"total_downtime_minutes"`
	RepairCount          int     `json:"repair_count"`
	IsCurrentlyDown      bool    `json:"is_currently_down"`
	DowntimeHours        float64 `json:"downtime_hours"`
}

// AvailabilityReport is the fleet-level view: how much of the non-retired
// fleet is in service right now.
type AvailabilityReport struct {
	TotalEquipment      int64   `json:"total_equipment"`
	Active              int64   `json:"active"`
	OutOfService        int64   `json:"out_of_service"`
	Retired             int64   `json:"retired"`
	CurrentlyDown       int64   `json:"currently_down"`
	AvailabilityPercent float64 `json:"availability_percent"`
}
