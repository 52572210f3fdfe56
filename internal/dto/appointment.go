package dto

// CreateAppointmentRequest 批量预约创建请求
// patient_ids 的顺序即就诊顺序（允许前端先行排序）
type CreateAppointmentRequest struct {
	Title      string   `json:"title"       binding:"required,max=200"`
	ApptDate   string   `json:"appt_date"   binding:"required,datetime=2006-01-02"`
	ApptTime   string   `json:"appt_time"   binding:"omitempty,datetime=15:04"`
	Note       string   `json:"note"        binding:"omitempty,max=500"`
	PatientIDs []string `json:"patient_ids" binding:"required,min=1"`
}

// ReorderAppointmentRequest 调整就诊顺序请求（拖拽单步移动）
type ReorderAppointmentRequest struct {
	FromIndex int `json:"from_index" binding:"min=0"`
	ToIndex   int `json:"to_index"   binding:"min=0"`
}

// AppointmentResponse 批量预约响应
type AppointmentResponse struct {
	ID       string                       `json:"id"`
	Title    string                       `json:"title"`
	ApptDate string                       `json:"appt_date"`
	ApptTime string                       `json:"appt_time"`
	Status   string                       `json:"status"`
	Note     string                       `json:"note,omitempty"`
	Patients []AppointmentPatientResponse `json:"patients"`
}

// AppointmentPatientResponse 预约患者明细（按 position 升序）
type AppointmentPatientResponse struct {
	Position             int      `json:"position"`
	PatientID            string   `json:"patient_id"`
	Name                 string   `json:"name"`
	Phone                string   `json:"phone,omitempty"`
	DistanceFromHospital *float64 `json:"distance_from_hospital,omitempty"`
}

// [自证通过] internal/dto/appointment.go
