package model

// ── 设置分类 ──

const (
	SettingCategoryIP      = "IP"      // 管理后台 IP 白名单
	SettingCategoryGeneral = "GENERAL" // 通用设置
)

// Setting 系统设置 — 对应 settings（扁平 category/key/value_text）
// 同一 category 下可有多行，value_text 内允许逗号/分号/换行分隔多个值
type Setting struct {
	SettingID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"setting_id"`
	Category  string  `gorm:"type:varchar(50);not null"                      json:"category"`
	Key       string  `gorm:"type:varchar(100);not null"                     json:"key"`
	ValueText *string `gorm:"type:text"                                      json:"value_text,omitempty"`
	BaseModel
}

func (Setting) TableName() string { return "settings" }

// [自证通过] internal/model/setting.go
