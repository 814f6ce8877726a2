package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/services"
)

// NotificationService defines the per-user notification operations.
type NotificationService interface {
	Settings(ctx context.Context, userID string) (*entities.NotificationSetting, error)
	UpdateSettings(ctx context.Context, userID string, update services.SettingsUpdate) (*entities.NotificationSetting, error)
	ListScheduled(ctx context.Context, userID string, pendingOnly bool, page database.Page) (database.Paginated[entities.ScheduledNotification], error)
	Schedule(ctx context.Context, userID string, in services.ScheduleInput) (*entities.ScheduledNotification, error)
	Cancel(ctx context.Context, userID, id string) error
}

// ThemeService defines the per-user theme operations.
type ThemeService interface {
	Preference(ctx context.Context, userID string) (*entities.UserThemePreference, error)
	UpdatePreference(ctx context.Context, userID string, update services.ThemeUpdate) (*entities.UserThemePreference, error)
}

type NotificationsController struct {
	service NotificationService
}

func NewNotificationsController(service NotificationService) *NotificationsController {
	return &NotificationsController{service: service}
}

// Settings returns the caller's settings, creating defaults on first read
// GET /api/notifications/settings
func (nc *NotificationsController) Settings(c *gin.Context) {
	settings, err := nc.service.Settings(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err, "get notification settings")
		return
	}
	respondOK(c, settings)
}

// PUT /api/notifications/settings
func (nc *NotificationsController) UpdateSettings(c *gin.Context) {
	var update services.SettingsUpdate
	if !bindJSON(c, &update) {
		return
	}
	settings, err := nc.service.UpdateSettings(c.Request.Context(), auth.UserID(c), update)
	if err != nil {
		respondError(c, err, "update notification settings")
		return
	}
	respondMessage(c, "Notification settings updated", settings)
}

// GET /api/notifications/scheduled?pending=true
func (nc *NotificationsController) ListScheduled(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	pendingOnly := c.Query("pending") == "true"
	result, err := nc.service.ListScheduled(c.Request.Context(), auth.UserID(c), pendingOnly, page)
	if err != nil {
		respondError(c, err, "list scheduled notifications")
		return
	}
	respondPage(c, result)
}

// POST /api/notifications/scheduled
func (nc *NotificationsController) Schedule(c *gin.Context) {
	var in services.ScheduleInput
	if !bindJSON(c, &in) {
		return
	}
	n, err := nc.service.Schedule(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		respondError(c, err, "schedule notification")
		return
	}
	respondCreated(c, "Notification scheduled", n)
}

// DELETE /api/notifications/scheduled/:id
func (nc *NotificationsController) Cancel(c *gin.Context) {
	if err := nc.service.Cancel(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "cancel notification")
		return
	}
	respondMessage(c, "Notification cancelled", nil)
}

type ThemesController struct {
	service ThemeService
}

func NewThemesController(service ThemeService) *ThemesController {
	return &ThemesController{service: service}
}

// GET /api/themes/preference
func (tc *ThemesController) Preference(c *gin.Context) {
	pref, err := tc.service.Preference(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err, "get theme preference")
		return
	}
	respondOK(c, pref)
}

// PUT /api/themes/preference
func (tc *ThemesController) UpdatePreference(c *gin.Context) {
	var update services.ThemeUpdate
	if !bindJSON(c, &update) {
		return
	}
	pref, err := tc.service.UpdatePreference(c.Request.Context(), auth.UserID(c), update)
	if err != nil {
		respondError(c, err, "update theme preference")
		return
	}
	respondMessage(c, "Theme preference updated", pref)
}
