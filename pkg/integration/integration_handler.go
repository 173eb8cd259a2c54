package integration

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// IntegrationDTO is an integration without its secrets.
type IntegrationDTO struct {
	Id             string     `json:"id"`
	Type           Type       `json:"type"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Icon           string     `json:"icon"`
	Color          string     `json:"color"`
	BaseURL        string     `json:"baseUrl,omitempty"`
	IsConnected    bool       `json:"isConnected"`
	HasCredentials bool       `json:"hasCredentials"`
	FeedURL        string     `json:"feedUrl,omitempty"`
	LastSync       *time.Time `json:"lastSync,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List the integrations of the current user
// @Tags Integration
// @Produce json
// @Success 200 {array} IntegrationDTO
// @Router /api/integrations [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]IntegrationDTO, 0, len(list))
	for _, i := range list {
		dtos = append(dtos, toDTO(i))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// Connect godoc
// @Summary Connect an integration
// @Tags Integration
// @Produce json
// @Param type path string true "Integration type"
// @Success 200 {object} IntegrationDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/integrations/{type}/connect [post]
// @Security XUserId
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	t, err := ParseType(mux.Vars(r)["type"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid integration type", err.Error())
		return
	}
	connected, err := h.service.Connect(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(connected))
}

// Disconnect godoc
// @Summary Disconnect an integration
// @Tags Integration
// @Param id path string true "Integration ID"
// @Success 204 "No Content"
// @Router /api/integrations/{id} [delete]
// @Security XUserId
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Disconnect(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Configure godoc
// @Summary Store the credentials of an integration
// @Tags Integration
// @Accept json
// @Produce json
// @Param id path string true "Integration ID"
// @Param credentials body Credentials true "Credentials"
// @Success 200 {object} IntegrationDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {string} string "Not Found"
// @Router /api/integrations/{id}/credentials [put]
// @Security XUserId
func (h *Handler) Configure(w http.ResponseWriter, r *http.Request) {
	var credentials Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	configured, err := h.service.Configure(r.Context(), mux.Vars(r)["id"], credentials)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(configured))
}

func toDTO(i Integration) IntegrationDTO {
	return IntegrationDTO{
		Id:             i.Id,
		Type:           i.Type,
		Name:           i.Name,
		Description:    i.Description,
		Icon:           i.Icon,
		Color:          i.Color,
		BaseURL:        i.BaseURL,
		IsConnected:    i.IsConnected,
		HasCredentials: i.APIKey != "" || i.RefreshToken != "",
		FeedURL:        i.FeedURL,
		LastSync:       i.LastSync,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownType):
		rest.WriteError(w, http.StatusBadRequest, "Invalid integration type", err.Error())
	case errors.Is(err, ErrIntegrationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Errorf("integration request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
