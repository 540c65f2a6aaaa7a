package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	"bgpiesa-backend/internal/shared/optional"
	"bgpiesa-backend/internal/shared/validators"
)

const (
	MaxTitleLength = 255
	MaxYear        = 9999
)

type Play struct {
	ID                 int64     `json:"id"`
	TitleBG            string    `json:"title_bg"`
	TitleEN            *string   `json:"title_en"`
	DescriptionBG      string    `json:"description_bg"`
	DescriptionEN      *string   `json:"description_en"`
	Year               *int      `json:"year"`
	Genre              *string   `json:"genre"`
	Theme              *string   `json:"theme"`
	MaleParticipants   *int      `json:"male_participants"`
	FemaleParticipants *int      `json:"female_participants"`
	PDFPath            *string   `json:"pdf_path"`
	AuthorID           int64     `json:"author_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Author *authormodel.Author `json:"author,omitempty"`
}

type PlayImage struct {
	ID        int64   `json:"id"`
	PlayID    int64   `json:"play_id"`
	ImageURL  string  `json:"image_url"`
	CaptionBG *string `json:"caption_bg"`
	CaptionEN *string `json:"caption_en"`
}

type PlayFile struct {
	ID        int64   `json:"id"`
	PlayID    int64   `json:"play_id"`
	FileURL   string  `json:"file_url"`
	CaptionBG *string `json:"caption_bg"`
	CaptionEN *string `json:"caption_en"`
}

// PlayDetail is a play with its author and ordered attachments
type PlayDetail struct {
	Play
	Images []PlayImage `json:"images"`
	Files  []PlayFile  `json:"files"`
}

// Attachment is the storage shape shared by images and files
type Attachment struct {
	ID        int64
	PlayID    int64
	URL       string
	CaptionBG *string
	CaptionEN *string
}

func (a Attachment) AsImage() PlayImage {
	return PlayImage{ID: a.ID, PlayID: a.PlayID, ImageURL: a.URL, CaptionBG: a.CaptionBG, CaptionEN: a.CaptionEN}
}

func (a Attachment) AsFile() PlayFile {
	return PlayFile{ID: a.ID, PlayID: a.PlayID, FileURL: a.URL, CaptionBG: a.CaptionBG, CaptionEN: a.CaptionEN}
}

// ============================================
// Requests
// ============================================

type CreatePlayRequest struct {
	TitleBG            string   `json:"title_bg"`
	TitleEN            *string  `json:"title_en"`
	DescriptionBG      string   `json:"description_bg"`
	DescriptionEN      *string  `json:"description_en"`
	Year               *int     `json:"year"`
	Genre              *string  `json:"genre"`
	Theme              *string  `json:"theme"`
	MaleParticipants   *int     `json:"male_participants"`
	FemaleParticipants *int     `json:"female_participants"`
	AuthorID           int64    `json:"author_id"`
	PDFPath            *string  `json:"pdf_path"`
	ImageURLs          []string `json:"image_urls"`
}

func (r CreatePlayRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TitleBG,
			validation.By(validators.NotBlank("title_bg is required")),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.DescriptionBG, validation.By(validators.NotBlank("description_bg is required"))),
		validation.Field(&r.AuthorID, validation.Required.Error("author_id is required"), validation.Min(int64(1))),
		validation.Field(&r.Year, validation.Min(0), validation.Max(MaxYear)),
		validation.Field(&r.MaleParticipants, validation.Min(0)),
		validation.Field(&r.FemaleParticipants, validation.Min(0)),
		validation.Field(&r.ImageURLs, validation.Each(validation.By(validators.NotBlank("image url cannot be empty")))),
	)
}

func (r CreatePlayRequest) ToEntity() *Play {
	return &Play{
		TitleBG:            strings.TrimSpace(r.TitleBG),
		TitleEN:            r.TitleEN,
		DescriptionBG:      r.DescriptionBG,
		DescriptionEN:      r.DescriptionEN,
		Year:               r.Year,
		Genre:              r.Genre,
		Theme:              r.Theme,
		MaleParticipants:   r.MaleParticipants,
		FemaleParticipants: r.FemaleParticipants,
		AuthorID:           r.AuthorID,
		PDFPath:            r.PDFPath,
	}
}

// UpdatePlayRequest is a partial update. ImageURLs, when present and
// not null, replaces the whole image collection.
type UpdatePlayRequest struct {
	TitleBG            optional.Field[string] `json:"title_bg"`
	TitleEN            optional.Field[string] `json:"title_en"`
	DescriptionBG      optional.Field[string] `json:"description_bg"`
	DescriptionEN      optional.Field[string] `json:"description_en"`
	Year               optional.Field[int]    `json:"year"`
	Genre              optional.Field[string] `json:"genre"`
	Theme              optional.Field[string] `json:"theme"`
	MaleParticipants   optional.Field[int]    `json:"male_participants"`
	FemaleParticipants optional.Field[int]    `json:"female_participants"`
	AuthorID           optional.Field[int64]  `json:"author_id"`
	PDFPath            optional.Field[string] `json:"pdf_path"`
	ImageURLs          *[]string              `json:"image_urls"`
}

func (r UpdatePlayRequest) Validate() error {
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
		validation.Field(&r.Year, validation.Min(0), validation.Max(MaxYear)),
		validation.Field(&r.MaleParticipants, validation.Min(0)),
		validation.Field(&r.FemaleParticipants, validation.Min(0)),
		validation.Field(&r.ImageURLs, validation.When(r.ImageURLs != nil, validation.By(func(interface{}) error {
			return validation.Validate(*r.ImageURLs, validation.Each(validation.By(validators.NotBlank("image url cannot be empty"))))
		}))),
	)
}

// Apply copies supplied scalar fields onto p
func (r UpdatePlayRequest) Apply(p *Play) {
	if r.TitleBG.Set && r.TitleBG.Val != nil {
		p.TitleBG = strings.TrimSpace(*r.TitleBG.Val)
	}
	r.TitleEN.Apply(&p.TitleEN)
	r.DescriptionBG.ApplyValue(&p.DescriptionBG)
	r.DescriptionEN.Apply(&p.DescriptionEN)
	r.Year.Apply(&p.Year)
	r.Genre.Apply(&p.Genre)
	r.Theme.Apply(&p.Theme)
	r.MaleParticipants.Apply(&p.MaleParticipants)
	r.FemaleParticipants.Apply(&p.FemaleParticipants)
	r.AuthorID.ApplyValue(&p.AuthorID)
	r.PDFPath.Apply(&p.PDFPath)
}

// UpdateCaptionRequest changes captions of an image or file.
// A supplied value replaces the caption (blank clears it); absent keeps it.
type UpdateCaptionRequest struct {
	CaptionBG *string `json:"caption_bg"`
	CaptionEN *string `json:"caption_en"`
}

// ListFilter narrows the public play list. Ranges are inclusive.
type ListFilter struct {
	Search                string
	AuthorID              *int64
	Genre                 string
	Theme                 string
	YearMin               *int
	YearMax               *int
	MaleParticipantsMin   *int
	MaleParticipantsMax   *int
	FemaleParticipantsMin *int
	FemaleParticipantsMax *int
}
