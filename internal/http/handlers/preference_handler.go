package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/service"
)

// PreferenceHandler управляет настройками уведомлений.
type PreferenceHandler struct {
	preferences *service.PreferenceService
}

func NewPreferenceHandler(preferences *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// Get обрабатывает GET /api/notifications/preferences.
func (h *PreferenceHandler) Get(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	pref, err := h.preferences.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToPreferencesResponse(pref))
}

// Update обрабатывает PUT /api/notifications/preferences. Изменения сразу применяются к открытым подпискам.
func (h *PreferenceHandler) Update(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var input service.UpdatePreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		common.Fail(c, common.BindError(err))
		return
	}

	pref, err := h.preferences.Update(c.Request.Context(), actor.UserID, input)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToPreferencesResponse(pref))
}
