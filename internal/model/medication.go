package model

import "time"

// MedicationDispense 药品发放记录 — 对应 medication_dispenses
// PhotoPath 仅保存对象存储路径字符串，文件内容由外部存储托管
type MedicationDispense struct {
	DispenseID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"dispense_id"`
	QueueID     string    `gorm:"type:uuid;not null"                             json:"queue_id"`
	PatientID   *string   `gorm:"type:uuid"                                      json:"patient_id,omitempty"`
	StaffID     *string   `gorm:"type:uuid"                                      json:"staff_id,omitempty"`
	PhotoPath   *string   `gorm:"type:varchar(300)"                              json:"photo_path,omitempty"`
	Note        string    `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	DispensedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"dispensed_at"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Patient *Patient `gorm:"foreignKey:PatientID;references:PatientID" json:"patient,omitempty"`
}

func (MedicationDispense) TableName() string { return "medication_dispenses" }
