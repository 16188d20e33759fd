package repository

import (
	"context"

	"freight-ai-assistant/internal/domain/model"
)

type ShipmentRepository interface {
	Save(ctx context.Context, s *model.Shipment) error
	FindByTracking(ctx context.Context, trackingCode string) (*model.Shipment, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Shipment, error)
	UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error
}
