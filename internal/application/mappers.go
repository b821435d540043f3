package application

import (
	"github.com/wms-platform/coordination-service/internal/domain"
)

// ToTaskDTO maps a task to its API representation. For count tasks the system
// quantity and variance are redacted until the task is completed, so counts
// stay blind.
func ToTaskDTO(task *domain.Task) *TaskDTO {
	dto := &TaskDTO{
		TaskID:      task.ID,
		Kind:        string(task.Kind),
		Status:      string(task.Status),
		SKU:         task.SKU,
		Quantity:    task.Quantity,
		LocationID:  task.Location,
		ClaimedBy:   task.ClaimedBy,
		CreatedAt:   task.CreatedAt,
		ClaimedAt:   task.ClaimedAt,
		CompletedAt: task.CompletedAt,
	}

	if task.Pick != nil {
		dto.Pick = &PickDetailDTO{
			WaveID:     task.Pick.WaveID,
			ShipmentID: task.Pick.ShipmentID,
			LineID:     task.Pick.LineID,
		}
	}
	if task.Putaway != nil {
		dto.Putaway = &PutawayDetailDTO{
			ASNID:      task.Putaway.ASNID,
			ToLocation: task.Putaway.ToLocation,
		}
	}
	if task.Count != nil {
		count := &CountDetailDTO{
			CountedQuantity: task.Count.CountedQuantity,
		}
		if task.Status == domain.TaskStatusCompleted {
			systemQty := task.Count.SystemQuantity
			count.SystemQuantity = &systemQty
			count.Variance = task.Count.Variance
		}
		dto.Count = count
	}

	return dto
}

// ToTaskDTOs maps a slice of tasks
func ToTaskDTOs(tasks []*domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, *ToTaskDTO(task))
	}
	return dtos
}

// ToShipmentDTO maps a shipment to its API representation
func ToShipmentDTO(shipment *domain.Shipment) *ShipmentDTO {
	lines := make([]ShipmentLineDTO, 0, len(shipment.Lines))
	for _, line := range shipment.Lines {
		lines = append(lines, ShipmentLineDTO{
			LineID:     line.LineID,
			SKU:        line.SKU,
			Quantity:   line.Quantity,
			LocationID: line.Location,
			PickStatus: string(line.PickStatus),
		})
	}

	return &ShipmentDTO{
		ShipmentID:     shipment.ID,
		WaveID:         shipment.WaveID,
		Status:         string(shipment.Status),
		Lines:          lines,
		Carrier:        string(shipment.Carrier),
		TrackingNumber: shipment.TrackingNumber,
		ShippedBy:      shipment.ShippedBy,
		WeightKg:       shipment.WeightKg,
		CreatedAt:      shipment.CreatedAt,
		PackedAt:       shipment.PackedAt,
		ShippedAt:      shipment.ShippedAt,
	}
}

// ToShipmentDTOs maps a slice of shipments
func ToShipmentDTOs(shipments []*domain.Shipment) []ShipmentDTO {
	dtos := make([]ShipmentDTO, 0, len(shipments))
	for _, shipment := range shipments {
		dtos = append(dtos, *ToShipmentDTO(shipment))
	}
	return dtos
}

// ToWaveDTO maps a wave to its API representation. When shipments are
// provided the DTO carries the derived status and the shipment list.
func ToWaveDTO(wave *domain.Wave, shipments []*domain.Shipment) *WaveDTO {
	dto := &WaveDTO{
		WaveID:         wave.ID,
		Status:         string(wave.Status),
		TotalShipments: wave.TotalShipments,
		CreatedAt:      wave.CreatedAt,
		ReleasedAt:     wave.ReleasedAt,
	}

	if shipments != nil {
		dto.Status = string(wave.DerivedStatus(shipments))
		dto.Shipments = ToShipmentDTOs(shipments)
	}

	return dto
}

// ToHandOffDTOs maps hand-off records
func ToHandOffDTOs(records []*domain.HandOffRecord) []HandOffDTO {
	dtos := make([]HandOffDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, HandOffDTO{
			HandOffID:      record.ID,
			ShipmentID:     record.ShipmentID,
			Carrier:        string(record.Carrier),
			TrackingNumber: record.TrackingNumber,
			ShippedBy:      record.ShippedBy,
			WeightKg:       record.WeightKg,
			RecordedAt:     record.RecordedAt,
		})
	}
	return dtos
}

// ToTicketDTO maps a ticket to its API representation
func ToTicketDTO(ticket *domain.Ticket) *TicketDTO {
	dto := &TicketDTO{
		TicketID:    ticket.ID,
		Type:        string(ticket.Type),
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		Description: ticket.Description,
		AssignedTo:  ticket.AssignedTo,
		Resolution:  ticket.Resolution,
		ResolvedBy:  ticket.ResolvedBy,
		ResolvedAt:  ticket.ResolvedAt,
		ReopenCount: ticket.ReopenCount,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}

	if ticket.Reference != nil {
		dto.Reference = &TicketReferenceDTO{
			TaskID:     ticket.Reference.TaskID,
			LocationID: ticket.Reference.LocationID,
			SKU:        ticket.Reference.SKU,
		}
	}

	return dto
}

// ToTicketDTOs maps a slice of tickets
func ToTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	dtos := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		dtos = append(dtos, *ToTicketDTO(ticket))
	}
	return dtos
}

// ToTicketStatsDTO maps ticket stats
func ToTicketStatsDTO(stats *domain.TicketStats) *TicketStatsDTO {
	return &TicketStatsDTO{
		Open:             stats.Open,
		InProgress:       stats.InProgress,
		Resolved:         stats.Resolved,
		Closed:           stats.Closed,
		HighPriorityOpen: stats.HighPriorityOpen,
	}
}
