package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bgpiesa-backend/internal/shared/optional"
	"bgpiesa-backend/internal/shared/validators"
)

const (
	MaxNameLength = 255
)

type Author struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	BiographyBG string    `json:"biography_bg"`
	BiographyEN *string   `json:"biography_en"`
	PhotoURL    *string   `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ============================================
// Requests
// ============================================

type CreateAuthorRequest struct {
	Name        string  `json:"name"`
	BiographyBG string  `json:"biography_bg"`
	BiographyEN *string `json:"biography_en"`
	PhotoURL    *string `json:"photo_url"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.By(validators.NotBlank("name is required")),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&r.BiographyBG, validation.By(validators.NotBlank("biography_bg is required"))),
	)
}

// ToEntity builds a new Author; timestamps are assigned by the service
func (r CreateAuthorRequest) ToEntity() *Author {
	return &Author{
		Name:        strings.TrimSpace(r.Name),
		BiographyBG: r.BiographyBG,
		BiographyEN: r.BiographyEN,
		PhotoURL:    r.PhotoURL,
	}
}

// UpdateAuthorRequest is a partial update; absent keys keep their value
type UpdateAuthorRequest struct {
	Name        optional.Field[string] `json:"name"`
	BiographyBG optional.Field[string] `json:"biography_bg"`
	BiographyEN optional.Field[string] `json:"biography_en"`
	PhotoURL    optional.Field[string] `json:"photo_url"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name.Set, validation.By(validators.NotBlank("name cannot be empty"))),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&r.BiographyBG,
			validation.When(r.BiographyBG.Set, validation.By(validators.NotBlank("biography_bg cannot be empty"))),
		),
	)
}

// Apply copies supplied fields onto a
func (r UpdateAuthorRequest) Apply(a *Author) {
	if r.Name.Set && r.Name.Val != nil {
		a.Name = strings.TrimSpace(*r.Name.Val)
	}
	r.BiographyBG.ApplyValue(&a.BiographyBG)
	r.BiographyEN.Apply(&a.BiographyEN)
	r.PhotoURL.Apply(&a.PhotoURL)
}

// ListFilter narrows the public author list
type ListFilter struct {
	Search string `form:"search"`
}
