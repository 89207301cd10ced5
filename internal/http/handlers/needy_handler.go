package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/foodrescue-backend/internal/dto"
	"github.com/ignatzorin/foodrescue-backend/internal/http/handlers/common"
	"github.com/ignatzorin/foodrescue-backend/internal/http/response"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/needy"
)

type NeedyHandler struct {
	register *needy.RegisterNeedyPersonUseCase
	list     *needy.ListNeedyPersonsUseCase
}

func NewNeedyHandler(register *needy.RegisterNeedyPersonUseCase, list *needy.ListNeedyPersonsUseCase) *NeedyHandler {
	return &NeedyHandler{register: register, list: list}
}

// Register обрабатывает POST /api/needy.
func (h *NeedyHandler) Register(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req dto.NeedyPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, common.BindError(err))
		return
	}

	person, err := h.register.Execute(c.Request.Context(), actor, req.ToParams())
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, dto.ToNeedyPersonResponse(person))
}

// List обрабатывает GET /api/needy?zone=&limit=.
func (h *NeedyHandler) List(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	persons, err := h.list.Execute(c.Request.Context(), actor, c.Query("zone"), common.ParseIntQuery(c, "limit", 0))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, dto.ToNeedyPersonResponses(persons))
}
