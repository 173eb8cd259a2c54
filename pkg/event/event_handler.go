package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/calendar"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type EventHandler struct {
	eventService *EventServiceImpl
}

// DropDTO is the target of a drag and drop. Date is "YYYY-MM-DD" in the user's timezone.
type DropDTO struct {
	Date   string `json:"date"`
	Hour   *int   `json:"hour,omitempty"`
	Minute *int   `json:"minute,omitempty"`
}

func NewEventHandler(eventService *EventServiceImpl) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GetEvents godoc
// @Summary List the current user's events in a time range
// @Tags Event
// @Produce json
// @Param from query string true "Start (RFC3339)"
// @Param to query string true "End (RFC3339)"
// @Success 200 {array} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/event [get]
// @Security XUserId
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return
	}

	events, err := h.eventService.GetEvents(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventsToDTO(events))
}

// GetEvent godoc
// @Summary Get an event and announce that its details were opened
// @Tags Event
// @Produce json
// @Param eventUid path string true "Event UID"
// @Success 200 {object} calendar.EventDTO
// @Failure 404 {string} string "Not Found"
// @Router /api/calendar/event/{eventUid} [get]
// @Security XUserId
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.RequestDetail(r.Context(), mux.Vars(r)["eventUid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventToDTO(*event))
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body calendar.EventDTO true "Event"
// @Success 201 {object} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/event [post]
// @Security XUserId
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto calendar.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.eventService.AddEvent(r.Context(), calendar.DTOToEvent(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debugf("Created event %s", created.UID)
	rest.WriteJSON(w, http.StatusCreated, calendar.EventToDTO(*created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Event
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param event body calendar.EventDTO true "Event"
// @Success 200 {object} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {string} string "Not Found"
// @Router /api/calendar/event/{eventUid} [put]
// @Security XUserId
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto calendar.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.UID = mux.Vars(r)["eventUid"]

	updated, err := h.eventService.UpdateEvent(r.Context(), calendar.DTOToEvent(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventToDTO(*updated))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Event
// @Param eventUid path string true "Event UID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not Found"
// @Router /api/calendar/event/{eventUid} [delete]
// @Security XUserId
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.DeleteEvent(r.Context(), mux.Vars(r)["eventUid"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DropEvent godoc
// @Summary Reschedule an event dropped on a day or time slot
// @Tags Event
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param drop body DropDTO true "Drop target"
// @Success 200 {object} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {string} string "Not Found"
// @Router /api/calendar/event/{eventUid}/drop [post]
// @Security XUserId
func (h *EventHandler) DropEvent(w http.ResponseWriter, r *http.Request) {
	var dto DropDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	date, err := parseDate(r, dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return
	}
	if dto.Hour != nil && (*dto.Hour < 0 || *dto.Hour > 23) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid hour", "'hour' must be between 0 and 23")
		return
	}

	moved, err := h.eventService.Reschedule(r.Context(), mux.Vars(r)["eventUid"], Drop{Date: date, Hour: dto.Hour, Minute: dto.Minute})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, calendar.EventToDTO(*moved))
}

// RequestAdd godoc
// @Summary Request a new event at a day or time slot
// @Description Publishes the add request and returns a prefilled draft event
// @Tags Event
// @Accept json
// @Produce json
// @Param slot body DropDTO true "Slot"
// @Success 202 {object} calendar.EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/add-request [post]
// @Security XUserId
func (h *EventHandler) RequestAdd(w http.ResponseWriter, r *http.Request) {
	var dto DropDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	date, err := parseDate(r, dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return
	}

	draft := h.eventService.RequestAdd(r.Context(), AddRequest{Date: date, Hour: dto.Hour, Minute: dto.Minute})
	rest.WriteJSON(w, http.StatusAccepted, calendar.EventToDTO(draft))
}

func parseDate(r *http.Request, value string) (time.Time, error) {
	loc := time.UTC
	if currentUser, err := user.CurrentUser(r.Context()); err == nil {
		loc = currentUser.Settings.Location()
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Errorf("event request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
