package services

import (
	"context"
	"errors"
	"strings"

	"marketplace-hub/models"
	"marketplace-hub/repository"
)

type VendorService struct {
	vendors repository.VendorRepository
}

func NewVendorService(vendors repository.VendorRepository) *VendorService {
	return &VendorService{vendors: vendors}
}

func requireVendor(p Principal) error {
	switch p.Role {
	case models.RoleVendor:
		return nil
	case models.RoleUser, models.RoleAdmin:
		return forbidden("User role " + string(p.Role) + " is not authorized to access this route")
	default:
		return forbidden("Not authorized")
	}
}

func (s *VendorService) Profile(ctx context.Context, p Principal) (*models.Vendor, error) {
	if err := requireVendor(p); err != nil {
		return nil, err
	}
	vendor, err := s.vendors.FindByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Vendor profile not found")
		}
		return nil, internal("Server error", err)
	}
	return vendor, nil
}

type VendorProfileUpdate struct {
	BusinessName string
	BusinessType string
	GSTNumber    string
	Description  string
}

// UpdateProfile changes the non-empty fields. Verification is left to administrators.
func (s *VendorService) UpdateProfile(ctx context.Context, p Principal, in VendorProfileUpdate) (*models.Vendor, error) {
	if err := requireVendor(p); err != nil {
		return nil, err
	}

	var upd repository.VendorUpdate
	set := func(dst **string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = &v
		}
	}
	set(&upd.BusinessName, in.BusinessName)
	set(&upd.BusinessType, in.BusinessType)
	set(&upd.GSTNumber, in.GSTNumber)
	set(&upd.Description, in.Description)

	vendor, err := s.vendors.Update(ctx, p.UserID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Vendor profile not found")
		}
		return nil, internal("Server error", err)
	}
	return vendor, nil
}
