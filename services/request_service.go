package services

import (
	"context"
	"strings"
	"time"

	"marketplace-hub/models"
	"marketplace-hub/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestService struct {
	requests repository.RequestItemRepository
}

func NewRequestService(requests repository.RequestItemRepository) *RequestService {
	return &RequestService{requests: requests}
}

type RequestInput struct {
	ItemName        string
	Category        string
	Description     string
	PreferredVendor string
}

func (s *RequestService) Create(ctx context.Context, p Principal, in RequestInput) (*models.RequestItem, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	if in.ItemName == "" {
		return nil, validationError("Please provide the item name")
	}

	item := &models.RequestItem{
		UserID:      p.UserID,
		ItemName:    in.ItemName,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Status:      models.RequestPending,
		CreatedAt:   time.Now().UTC(),
	}
	if v := strings.TrimSpace(in.PreferredVendor); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, validationError("Invalid preferred vendor")
		}
		item.PreferredVendor = &id
	}

	if err := s.requests.Create(ctx, item); err != nil {
		return nil, internal("Server error", err)
	}
	return item, nil
}

func (s *RequestService) ListMine(ctx context.Context, p Principal) ([]models.RequestItem, error) {
	items, err := s.requests.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, internal("Server error", err)
	}
	return items, nil
}
