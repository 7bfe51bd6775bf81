package dto

import (
	"mime/multipart"

	"villa/internal/domains/room/model"
	"villa/shared"
	gDto "villa/shared/dto"
	gModel "villa/shared/model"
	"villa/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name           string                `json:"name"             validate:"required,max=100"`
	Description    string                `json:"description"      validate:"omitempty,max=2000"`
	Capacity       int                   `json:"capacity"         validate:"omitempty,min=0"`
	PricePerNight  float64               `json:"price_per_night"  validate:"omitempty,min=0"`
	ICalImportURLs []string              `json:"ical_import_urls" validate:"omitempty,dive,url"`
	Image          *multipart.FileHeader `json:"image"            validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile      multipart.File        `json:"-"`
	Active         *bool                 `json:"active"           validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string, imageURL string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Room{
		ID:             uuid.NewString(),
		Name:           c.Name,
		Description:    c.Description,
		Capacity:       c.Capacity,
		PricePerNight:  c.PricePerNight,
		Image:          imageURL,
		Active:         active,
		ICalImportURLs: c.ICalImportURLs,
		ICalToken:      uuid.NewString(),
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name           string                `db:"name"             json:"name"             validate:"omitempty,max=100"`
	Description    *string               `db:"description"      json:"description"      validate:"omitempty,max=2000"`
	Capacity       *int                  `db:"capacity"         json:"capacity"         validate:"omitempty,min=0"`
	PricePerNight  *float64              `db:"price_per_night"  json:"price_per_night"  validate:"omitempty,min=0"`
	ICalImportURLs []string              `db:"ical_import_urls" json:"ical_import_urls" validate:"omitempty,dive,url"`
	Image          *multipart.FileHeader `json:"image"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile      multipart.File        `json:"-"`
	Active         *bool                 `db:"active"           json:"active"           validate:"omitempty"`
}

type RoomResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Capacity       int      `json:"capacity"`
	PricePerNight  float64  `json:"price_per_night"`
	Image          string   `json:"image"`
	Active         bool     `json:"active"`
	ICalImportURLs []string `json:"ical_import_urls,omitempty"`
	ICalToken      string   `json:"ical_token,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.Capacity = model.Capacity
	r.PricePerNight = model.PricePerNight
	r.Image = model.Image
	r.Active = model.Active
	r.ICalImportURLs = model.ICalImportURLs
	r.ICalToken = model.ICalToken
	r.Metadata.FromModel(model.Metadata)
}

// PublicView strips the admin-only fields before the response leaves an
// unauthenticated endpoint.
func (r *RoomResponse) PublicView() {
	r.ICalImportURLs = nil
	r.ICalToken = ""
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
