package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/profile"
)

// ProfileHandler управляет профилями отелей и курьеров текущего пользователя.
type ProfileHandler struct {
	getHotel    *profile.GetHotelProfileUseCase
	upsertHotel *profile.UpsertHotelProfileUseCase
	getAgent    *profile.GetAgentProfileUseCase
	upsertAgent *profile.UpsertAgentProfileUseCase
}

func NewProfileHandler(
	getHotel *profile.GetHotelProfileUseCase,
	upsertHotel *profile.UpsertHotelProfileUseCase,
	getAgent *profile.GetAgentProfileUseCase,
	upsertAgent *profile.UpsertAgentProfileUseCase,
) *ProfileHandler {
	return &ProfileHandler{
		getHotel:    getHotel,
		upsertHotel: upsertHotel,
		getAgent:    getAgent,
		upsertAgent: upsertAgent,
	}
}

// GetHotel обрабатывает GET /api/hotels/me.
func (h *ProfileHandler) GetHotel(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	hotel, err := h.getHotel.Execute(c.Request.Context(), actor.UserID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToHotelResponse(hotel))
}

// UpsertHotel обрабатывает PUT /api/hotels/me.
func (h *ProfileHandler) UpsertHotel(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req dto.HotelProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, common.BindError(err))
		return
	}

	hotel, err := h.upsertHotel.Execute(c.Request.Context(), actor.UserID, req.ToParams())
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToHotelResponse(hotel))
}

// GetAgent обрабатывает GET /api/agents/me.
func (h *ProfileHandler) GetAgent(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	agent, err := h.getAgent.Execute(c.Request.Context(), actor.UserID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToAgentResponse(agent))
}

// UpsertAgent обрабатывает PUT /api/agents/me.
func (h *ProfileHandler) UpsertAgent(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req dto.AgentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, common.BindError(err))
		return
	}

	agent, err := h.upsertAgent.Execute(c.Request.Context(), actor.UserID, req.ToParams())
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToAgentResponse(agent))
}
