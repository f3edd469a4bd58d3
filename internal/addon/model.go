package addon

import "time"

type Addon struct {
	ID          string
	Name        string
	Description *string
	PriceCents  int64
	IsActive    bool
	Category    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateAddonInput struct {
	Name        string
	Description *string
	PriceCents  int64
	Category    *string
}

// UpdateAddonInput supports partial replacement: nil fields are left
// untouched.
type UpdateAddonInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	IsActive    *bool
	Category    *string
}

type AddonFilterInput struct {
	Category   *string
	ActiveOnly bool
}
