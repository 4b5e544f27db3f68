package profile

import (
	"context"
	"errors"
	"strings"

	"backend-drivemate/internal/db"

	"github.com/jackc/pgx/v5"
)

const defaultDisplayName = "Driver"

// Profile is a driver profile where every field is optional.
type Profile struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	FullName     *string `json:"full_name,omitempty"`
	DisplayName  *string `json:"display_name,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	Avatar       *string `json:"avatar,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
}

type accessor func(Profile) string

func field(get func(Profile) *string) accessor {
	return func(p Profile) string {
		if v := get(p); v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}
}

var nameAccessors = []accessor{
	field(func(p Profile) *string { return p.Name }),
	field(func(p Profile) *string { return p.FullName }),
	field(func(p Profile) *string { return p.DisplayName }),
	func(p Profile) string {
		first := field(func(p Profile) *string { return p.FirstName })(p)
		last := field(func(p Profile) *string { return p.LastName })(p)
		return strings.TrimSpace(first + " " + last)
	},
	func(p Profile) string {
		email := field(func(p Profile) *string { return p.Email })(p)
		local, _, _ := strings.Cut(email, "@")
		return local
	},
}

var imageAccessors = []accessor{
	field(func(p Profile) *string { return p.ProfileImage }),
	field(func(p Profile) *string { return p.PhotoURL }),
	field(func(p Profile) *string { return p.Avatar }),
	field(func(p Profile) *string { return p.ImageURL }),
}

func firstMatch(p Profile, accessors []accessor) string {
	for _, get := range accessors {
		if v := get(p); v != "" {
			return v
		}
	}
	return ""
}

// DisplayName returns the first non-empty name candidate, falling back to "Driver".
func DisplayName(p Profile) string {
	if v := firstMatch(p, nameAccessors); v != "" {
		return v
	}
	return defaultDisplayName
}

// ProfileImage returns the first non-empty image URL, or "" when the profile has none.
func ProfileImage(p Profile) string {
	return firstMatch(p, imageAccessors)
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get loads a driver profile. A driver without a profile row gets an empty profile.
func (s *Service) Get(ctx context.Context, driverID string) (Profile, error) {
	p := Profile{ID: driverID}
	if s.db == nil {
		return p, nil
	}
	row := s.db.QueryRow(ctx, `
		SELECT name, full_name, display_name, first_name, last_name, email,
		       profile_image, photo_url, avatar, image_url
		FROM driver_profiles WHERE id=$1
	`, driverID)
	err := row.Scan(&p.Name, &p.FullName, &p.DisplayName, &p.FirstName, &p.LastName, &p.Email,
		&p.ProfileImage, &p.PhotoURL, &p.Avatar, &p.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{ID: driverID}, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}
