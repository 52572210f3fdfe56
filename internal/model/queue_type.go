package model

// QueueType 队列类型 — 对应 queue_types
// prefix + format 决定显示编号（如 A007），priority 决定叫号权重
type QueueType struct {
	QueueTypeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"queue_type_id"`
	Family      string `gorm:"type:varchar(20);not null"                      json:"family"`
	Code        string `gorm:"type:varchar(20);not null"                      json:"code"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Prefix      string `gorm:"type:varchar(5);not null"                       json:"prefix"`
	Format      string `gorm:"type:varchar(3);not null;default:'000'"         json:"format"` // "0" | "00" | "000"
	Enabled     bool   `gorm:"not null;default:true"                          json:"enabled"`
	Algorithm   string `gorm:"type:varchar(30);not null;default:'FIFO'"       json:"algorithm"`
	Priority    int    `gorm:"not null;default:5"                             json:"priority"`
	BaseModel
}

func (QueueType) TableName() string { return "queue_types" }

// [自证通过] internal/model/queue_type.go
