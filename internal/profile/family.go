package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const defaultFamilyName = "Family"

var ErrFamilyNotFound = errors.New("family not found")

// Family is the account that monitors a group of linked driver profiles.
type Family struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	FamilyName   *string `json:"family_name,omitempty"`
	DisplayName  *string `json:"display_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	Avatar       *string `json:"avatar,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FamilyName returns name, family name, display name or the email local part, else "Family".
func FamilyName(f Family) string {
	local, _, _ := strings.Cut(trimmed(f.Email), "@")
	if v := firstNonEmpty(trimmed(f.Name), trimmed(f.FamilyName), trimmed(f.DisplayName), local); v != "" {
		return v
	}
	return defaultFamilyName
}

func FamilyImage(f Family) string {
	return firstNonEmpty(trimmed(f.ProfileImage), trimmed(f.PhotoURL), trimmed(f.Avatar), trimmed(f.ImageURL))
}

func (s *Service) GetFamily(ctx context.Context, familyID string) (Family, error) {
	if s.db == nil {
		return Family{}, ErrFamilyNotFound
	}
	f := Family{ID: familyID}
	row := s.db.QueryRow(ctx, `
		SELECT name, family_name, display_name, email, profile_image, photo_url, avatar, image_url
		FROM families WHERE id=$1
	`, familyID)
	err := row.Scan(&f.Name, &f.FamilyName, &f.DisplayName, &f.Email,
		&f.ProfileImage, &f.PhotoURL, &f.Avatar, &f.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Family{}, ErrFamilyNotFound
	}
	if err != nil {
		return Family{}, err
	}
	return f, nil
}

// LinkedDrivers lists the ids of driver profiles linked to familyID.
func (s *Service) LinkedDrivers(ctx context.Context, familyID string) ([]string, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT id FROM driver_profiles WHERE family_id=$1 ORDER BY id`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan linked driver: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
