package model

import (
	"villa/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID             = "id"
	FieldName           = "name"
	FieldDescription    = "description"
	FieldCapacity       = "capacity"
	FieldPricePerNight  = "price_per_night"
	FieldImage          = "image"
	FieldActive         = "active"
	FieldICalImportURLs = "ical_import_urls"
	FieldICalToken      = "ical_token"
)

type Room struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	Capacity       int            `db:"capacity"`
	PricePerNight  float64        `db:"price_per_night"`
	Image          string         `db:"image"`
	Active         bool           `db:"active"`
	ICalImportURLs pq.StringArray `db:"ical_import_urls"`
	ICalToken      string         `db:"ical_token"`
	model.Metadata
}
