package model

import "time"

// 用户角色
const (
	RoleOwner         = "owner"
	RoleAdministrator = "administrator"
	RoleManager       = "manager"
	RoleKitchen       = "kitchen"
	RoleTable         = "table"
	RoleCustomer      = "customer"
)

// StaffRoles 可进入后台的角色
var StaffRoles = []string{RoleOwner, RoleAdministrator, RoleManager, RoleKitchen}

// User 结算管线只消费已解析的身份，账号管理属于外部协作方
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:100;not null"` // bcrypt hash
	Nickname  string    `json:"nickname" gorm:"size:50;default:''"`
	Role      string    `json:"role" gorm:"size:15;default:customer;index"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// IsStaff 是否后台角色
func (u *User) IsStaff() bool {
	for _, r := range StaffRoles {
		if u.Role == r {
			return true
		}
	}
	return false
}
