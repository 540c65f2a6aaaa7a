package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/shared/optional"
	"bgpiesa-backend/internal/shared/validators"
)

const MaxTitleLength = 255

// LiteraryPiece is a standalone work, optionally linked to a play
type LiteraryPiece struct {
	ID            int64     `json:"id"`
	TitleBG       string    `json:"title_bg"`
	TitleEN       *string   `json:"title_en"`
	DescriptionBG string    `json:"description_bg"`
	DescriptionEN *string   `json:"description_en"`
	PDFPath       *string   `json:"pdf_path"`
	AuthorID      int64     `json:"author_id"`
	PlayID        *int64    `json:"play_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Author *authormodel.Author `json:"author,omitempty"`
	Play   *playmodel.Play     `json:"play"`
}

// ============================================
// Requests
// ============================================

type CreatePieceRequest struct {
	TitleBG       string  `json:"title_bg"`
	TitleEN       *string `json:"title_en"`
	DescriptionBG string  `json:"description_bg"`
	DescriptionEN *string `json:"description_en"`
	PDFPath       *string `json:"pdf_path"`
	AuthorID      int64   `json:"author_id"`
	PlayID        *int64  `json:"play_id"`
}

func (r CreatePieceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TitleBG,
			validation.By(validators.NotBlank("title_bg is required")),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.DescriptionBG, validation.By(validators.NotBlank("description_bg is required"))),
		validation.Field(&r.AuthorID, validation.Required.Error("author_id is required"), validation.Min(int64(1))),
		validation.Field(&r.PlayID, validation.Min(int64(1))),
	)
}

func (r CreatePieceRequest) ToEntity() *LiteraryPiece {
	return &LiteraryPiece{
		TitleBG:       strings.TrimSpace(r.TitleBG),
		TitleEN:       r.TitleEN,
		DescriptionBG: r.DescriptionBG,
		DescriptionEN: r.DescriptionEN,
		PDFPath:       r.PDFPath,
		AuthorID:      r.AuthorID,
		PlayID:        r.PlayID,
	}
}

// UpdatePieceRequest is a partial update. play_id: null unlinks the play.
type UpdatePieceRequest struct {
	TitleBG       optional.Field[string] `json:"title_bg"`
	TitleEN       optional.Field[string] `json:"title_en"`
	DescriptionBG optional.Field[string] `json:"description_bg"`
	DescriptionEN optional.Field[string] `json:"description_en"`
	PDFPath       optional.Field[string] `json:"pdf_path"`
	AuthorID      optional.Field[int64]  `json:"author_id"`
	PlayID        optional.Field[int64]  `json:"play_id"`
}

func (r UpdatePieceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TitleBG,
			validation.When(r.TitleBG.Set, validation.By(validators.NotBlank("title_bg cannot be empty"))),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.DescriptionBG,
			validation.When(r.DescriptionBG.Set, validation.By(validators.NotBlank("description_bg cannot be empty"))),
		),
		validation.Field(&r.AuthorID,
			validation.When(r.AuthorID.Set, validation.Required.Error("author_id cannot be null"), validation.Min(int64(1))),
		),
		validation.Field(&r.PlayID, validation.Min(int64(1))),
	)
}

func (r UpdatePieceRequest) Apply(p *LiteraryPiece) {
	if r.TitleBG.Set && r.TitleBG.Val != nil {
		p.TitleBG = strings.TrimSpace(*r.TitleBG.Val)
	}
	r.TitleEN.Apply(&p.TitleEN)
	r.DescriptionBG.ApplyValue(&p.DescriptionBG)
	r.DescriptionEN.Apply(&p.DescriptionEN)
	r.PDFPath.Apply(&p.PDFPath)
	r.AuthorID.ApplyValue(&p.AuthorID)
	r.PlayID.Apply(&p.PlayID)
}

type ListFilter struct {
	Search   string
	AuthorID *int64
	PlayID   *int64
}
