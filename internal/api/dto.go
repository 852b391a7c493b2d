package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/objectservice"
)

// maxShortName bounds display aliases.
const maxShortName = 64

// ObjectDetail is the full object response type (aliased from the domain layer).
type ObjectDetail = objectservice.ObjectDetail

// ObjectListItem is a lightweight item in a list response (aliased from the domain layer).
type ObjectListItem = objectservice.ObjectListItem

// ObjectListResponse wraps paginated object listings.
type ObjectListResponse struct {
	Objects []ObjectListItem `json:"objects" validate:"required"`
	Total   int              `json:"total" example:"42" validate:"required"`
}

// LineageResponse is the first-prior chain of an object.
type LineageResponse = objectservice.LineageResult

// BacklinksResponse wraps the references pointing at an object.
type BacklinksResponse struct {
	Backlinks []models.Link `json:"backlinks" validate:"required"`
}

// NamesResponse wraps a name range query.
type NamesResponse struct {
	Names []objectservice.NameMatch `json:"names" validate:"required"`
}

// LookupResponse lists the objects carrying a name.
type LookupResponse struct {
	Name   string   `json:"name" example:"Alice" validate:"required"`
	Folded bool     `json:"folded"`
	IDs    []string `json:"ids" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results" validate:"required"`
}

// StatsResponse summarises the store (aliased from the domain layer).
type StatsResponse = objectservice.Stats

// ShortNameRequest is the request body for setting a display alias. An empty
// short name clears the alias.
type ShortNameRequest struct {
	ShortName string `json:"short_name" example:"ally"`
}

// Validate validates the request.
func (r ShortNameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ShortName, validation.RuneLength(0, maxShortName)),
	)
}
