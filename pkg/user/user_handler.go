package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eventcal/eventcal/internal/rest"
	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Name        string      `json:"name"`
	PicturePath string      `json:"picturePath"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Timezone     string                      `json:"timezone"`
	WeekStartDay string                      `json:"weekStartDay"`
	BadgeVariant BadgeVariant                `json:"badgeVariant"`
	WorkingHours map[string]layout.HourRange `json:"workingHours"`
	VisibleHours layout.HourRange            `json:"visibleHours"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	log.Tracef("Creating new user: %+v", dto)

	user, err := dtoToUser(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
		return
	}
	createdUser, err := h.userService.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, userToDTO(createdUser))
}

// CurrentUser godoc
// @Summary Get current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 404 {string} string "User Not Found"
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrNoUser) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateUser godoc
// @Summary Update the current user's name and picture
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user/current [put]
// @Security XUserId
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user")

	var dto UserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if dto.Name == "" {
		rest.WriteError(w, http.StatusBadRequest, "Name is required", "")
		return
	}

	updatedUser, err := h.userService.UpdateUser(r.Context(), User{Name: dto.Name, PicturePath: dto.PicturePath})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Debugf("Updated user: %d", updatedUser.Id)

	rest.WriteJSON(w, http.StatusOK, userToDTO(updatedUser))
}

// UpdateSettings godoc
// @Summary Update the current user's calendar settings
// @Tags User
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid settings"
// @Router /api/user/current/settings [put]
// @Security XUserId
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user settings")

	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	settings, err := dtoToSettings(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	updatedUser, err := h.userService.UpdateSettings(r.Context(), settings)
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rest.WriteJSON(w, http.StatusOK, userToDTO(updatedUser))
}

// GetAvailableUsers godoc
// @Summary Get all users
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/user [get]
func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting available users")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	usersDTO := make([]UserDTO, 0, len(users))
	for _, user := range users {
		usersDTO = append(usersDTO, userToDTO(user))
	}
	rest.WriteJSON(w, http.StatusOK, usersDTO)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags User
// @Param userUid path string true "User UID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not Found"
// @Router /api/user/{userUid} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Deleting user")

	userUid := mux.Vars(r)["userUid"]
	user, err := h.userService.GetUserByUid(r.Context(), userUid)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Debug("Deleting user with id: ", user.Id)
	if err = h.userService.DeleteUser(r.Context(), user.Id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Uid:         user.Uid,
		Name:        user.Name,
		PicturePath: user.PicturePath,
		Settings:    settingsToDTO(user.Settings),
	}
}

func settingsToDTO(settings Settings) SettingsDTO {
	workingHours := make(map[string]layout.HourRange, len(settings.WorkingHours))
	for day, r := range settings.WorkingHours {
		workingHours[strings.ToLower(day.String())] = r
	}
	return SettingsDTO{
		Timezone:     settings.Timezone,
		WeekStartDay: strings.ToLower(settings.WeekFirstDay.String()),
		BadgeVariant: settings.BadgeVariant,
		WorkingHours: workingHours,
		VisibleHours: settings.VisibleHours,
	}
}

func dtoToUser(dto UserDTO) (User, error) {
	settings, err := dtoToSettings(dto.Settings)
	if err != nil {
		return User{}, err
	}
	return User{
		Uid:         dto.Uid,
		Name:        dto.Name,
		PicturePath: dto.PicturePath,
		Settings:    settings,
	}, nil
}

func dtoToSettings(dto SettingsDTO) (Settings, error) {
	weekFirstDay := time.Sunday
	if dto.WeekStartDay != "" {
		day, err := ParseWeekday(dto.WeekStartDay)
		if err != nil {
			return Settings{}, err
		}
		weekFirstDay = day
	}
	var workingHours layout.WorkingHours
	if dto.WorkingHours != nil {
		workingHours = make(layout.WorkingHours, len(dto.WorkingHours))
		for name, r := range dto.WorkingHours {
			day, err := ParseWeekday(name)
			if err != nil {
				return Settings{}, err
			}
			workingHours[day] = r
		}
	}
	return Settings{
		Timezone:     dto.Timezone,
		WeekFirstDay: weekFirstDay,
		BadgeVariant: dto.BadgeVariant,
		WorkingHours: workingHours,
		VisibleHours: dto.VisibleHours,
	}, nil
}

// ParseWeekday accepts English weekday names in any case.
func ParseWeekday(day string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), day) {
			return d, nil
		}
	}
	return time.Sunday, errors.New("unknown weekday: " + day)
}
