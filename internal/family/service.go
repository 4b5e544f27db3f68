package family

import (
	"context"
	"fmt"

	"backend-drivemate/internal/profile"
)

// DriveMode tells whether a driver currently has a trip running.
type DriveMode interface {
	IsRunning(driverID string) bool
}

type Dashboard struct {
	FamilyID       string   `json:"family_id"`
	FamilyName     string   `json:"family_name"`
	ProfileImage   string   `json:"profile_image,omitempty"`
	LinkedProfiles int      `json:"linked_profiles"`
	ActiveProfiles int      `json:"active_profiles"`
	ActiveDrivers  []string `json:"active_drivers"`
}

type Service struct {
	profiles *profile.Service
	drivers  DriveMode
}

func NewService(profiles *profile.Service, drivers DriveMode) *Service {
	if profiles == nil {
		profiles = profile.NewService(nil)
	}
	return &Service{profiles: profiles, drivers: drivers}
}

// Dashboard counts the family's linked drivers and how many of them are driving right now.
func (s *Service) Dashboard(ctx context.Context, familyID string) (Dashboard, error) {
	f, err := s.profiles.GetFamily(ctx, familyID)
	if err != nil {
		return Dashboard{}, err
	}
	linked, err := s.profiles.LinkedDrivers(ctx, familyID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load linked drivers: %w", err)
	}

	d := Dashboard{
		FamilyID:       familyID,
		FamilyName:     profile.FamilyName(f),
		ProfileImage:   profile.FamilyImage(f),
		LinkedProfiles: len(linked),
		ActiveDrivers:  []string{},
	}
	for _, id := range linked {
		if s.drivers != nil && s.drivers.IsRunning(id) {
			d.ActiveDrivers = append(d.ActiveDrivers, id)
		}
	}
	d.ActiveProfiles = len(d.ActiveDrivers)
	return d, nil
}
