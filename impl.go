package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"teamDeck/model"
	"teamDeck/services/roster"
	"teamDeck/services/settings"
	"teamDeck/state"
	"teamDeck/utils"
	"teamDeck/validator"
)

type Server struct {
	View            *state.View
	RosterService   roster.Service
	SettingsService settings.Service

	// SessionIdentity is the identity this process bootstrapped for itself.
	// Requests without a bearer token act as it.
	SessionIdentity string
}

func NewServer(view *state.View, rosterService roster.Service, settingsService settings.Service, sessionIdentity string) Server {
	return Server{
		View:            view,
		RosterService:   rosterService,
		SettingsService: settingsService,
		SessionIdentity: sessionIdentity,
	}
}

type viewResponse struct {
	Identity        string                `json:"identity"`
	IsAdmin         bool                  `json:"isAdmin"`
	SettingsPresent bool                  `json:"settingsPresent"`
	Profiles        []model.PlayerProfile `json:"profiles"`
	Settings        model.TeamSettings    `json:"settings"`
}

type updateProfileRequest struct {
	Name         *string `json:"name"`
	JerseyNumber *string `json:"jerseyNumber"`
	AvatarRef    *string `json:"avatarRef"`
}

type addAdminRequest struct {
	ID string `json:"id"`
}

type coachMessageRequest struct {
	Message string `json:"message"`
}

func (s Server) identity(c *gin.Context) string {
	if id, ok := validator.IdentityFromContext(c); ok {
		return id
	}
	return s.SessionIdentity
}

// GetView (GET /view)
func (s Server) GetView(c *gin.Context) {
	id := s.identity(c)
	settingsView, present := s.View.Settings()
	c.JSON(http.StatusOK, viewResponse{
		Identity:        id,
		IsAdmin:         s.View.IsAdmin(id),
		SettingsPresent: present,
		Profiles:        s.View.Profiles(),
		Settings:        settingsView,
	})
}

// UpdateProfile (PATCH /profile)
func (s Server) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := model.ProfileUpdate{
		Name:      req.Name,
		AvatarRef: req.AvatarRef,
	}
	if req.JerseyNumber != nil {
		n, err := strconv.Atoi(*req.JerseyNumber)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "jersey number must be numeric"})
			return
		}
		update.JerseyNumber = utils.ToPointer(n)
	}

	profile, err := s.RosterService.UpdateOwnProfile(c.Request.Context(), s.identity(c), update)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, model.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, model.ErrProfileNotFound):
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddAdmin (POST /admins)
func (s Server) AddAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.SettingsService.AddAdmin(c.Request.Context(), s.identity(c), req.ID)
	if err != nil {
		c.JSON(adminErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveAdmin (DELETE /admins/:id)
func (s Server) RemoveAdmin(c *gin.Context) {
	err := s.SettingsService.RemoveAdmin(c.Request.Context(), s.identity(c), c.Param("id"))
	if err != nil {
		c.JSON(adminErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// SetCoachMessage (PUT /coach-message)
func (s Server) SetCoachMessage(c *gin.Context) {
	var req coachMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.SettingsService.SetCoachMessage(c.Request.Context(), s.identity(c), req.Message)
	if err != nil {
		c.JSON(adminErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func adminErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, model.ErrLastAdmin):
		return http.StatusConflict
	case errors.Is(err, model.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
