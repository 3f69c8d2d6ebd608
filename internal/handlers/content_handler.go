package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// ContentHandler serves the public marketing-site content. Editing goes
// through the PocketBase admin UI, not this API.
type ContentHandler struct {
	app *pocketbase.PocketBase
}

func NewContentHandler(app *pocketbase.PocketBase) *ContentHandler {
	return &ContentHandler{app: app}
}

// ListEvents - Published conference events
func (h *ContentHandler) ListEvents(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter(
		"events",
		"published = true",
		"starts_at",
		0,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list events", err)
	}

	result := []map[string]any{}
	for _, event := range records {
		result = append(result, map[string]any{
			"id":          event.Id,
			"name":        event.GetString("name"),
			"description": event.GetString("description"),
			"venue":       event.GetString("venue"),
			"starts_at":   event.GetDateTime("starts_at"),
			"ends_at":     event.GetDateTime("ends_at"),
		})
	}

	return e.JSON(http.StatusOK, result)
}

// ListSpeakers - Published speaker directory
func (h *ContentHandler) ListSpeakers(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter(
		"speakers",
		"published = true",
		"sort_order",
		0,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list speakers", err)
	}

	result := []map[string]any{}
	for _, speaker := range records {
		result = append(result, map[string]any{
			"id":        speaker.Id,
			"name":      speaker.GetString("name"),
			"title":     speaker.GetString("title"),
			"company":   speaker.GetString("company"),
			"bio":       speaker.GetString("bio"),
			"topic":     speaker.GetString("topic"),
			"photo_url": speaker.GetString("photo_url"),
		})
	}

	return e.JSON(http.StatusOK, result)
}

// ListTicketTypes - Active catalog entries for the tickets page
func (h *ContentHandler) ListTicketTypes(e *core.RequestEvent) error {
	records, err := h.app.FindRecordsByFilter(
		"ticket_types",
		"active = true",
		"price",
		0,
		0,
		dbx.Params{},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list tickets", err)
	}

	result := []map[string]any{}
	for _, tt := range records {
		result = append(result, map[string]any{
			"id":       tt.Id,
			"name":     tt.GetString("name"),
			"type":     tt.GetString("type"),
			"price":    tt.GetFloat("price"),
			"currency": tt.GetString("currency"),
		})
	}

	return e.JSON(http.StatusOK, result)
}
