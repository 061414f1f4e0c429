package model

// Role 角色模型
type Role struct {
	AuditModel
	Name   string `gorm:"type:varchar(50);index;not null" json:"name"` // 角色名称
	Memo   string `gorm:"type:varchar(500)" json:"memo"`               // 备注
	DeptID *int64 `gorm:"index" json:"dept_id,omitempty"`              // 所属部门，nil 或 0 表示全局角色
	Status Status `gorm:"type:smallint;not null" json:"status"`        // 状态
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// IsGlobal 是否为全局角色（可分配给任意部门）
func (r *Role) IsGlobal() bool {
	return IsGlobalDept(r.DeptID)
}

// AssignableTo 检查角色能否分配给指定部门
func (r *Role) AssignableTo(deptID int64) bool {
	return r.IsGlobal() || *r.DeptID == deptID
}

// 权限节点类型
const (
	PermissionTypeMenu      = "menu"      // 菜单
	PermissionTypeOperation = "operation" // 操作
)

// Permission 权限（菜单/操作）节点
// 通过 ParentID 弱引用父节点，nil 或 0 表示根节点
type Permission struct {
	BaseModel
	ParentID *int64 `gorm:"index" json:"parent_id,omitempty"`          // 父节点
	Name     string `gorm:"type:varchar(50);not null" json:"name"`     // 显示名称
	Code     string `gorm:"type:varchar(100);uniqueIndex" json:"code"` // 权限代码
	Type     string `gorm:"type:varchar(20);default:menu" json:"type"` // menu, operation
	Path     string `gorm:"type:varchar(255)" json:"path,omitempty"`   // 前端路由
	Icon     string `gorm:"type:varchar(100)" json:"icon,omitempty"`   // 图标
	Sort     int    `gorm:"default:0" json:"sort"`                     // 显示顺序
	Status   Status `gorm:"type:smallint;not null" json:"status"`      // 状态
}

// TableName 指定表名
func (Permission) TableName() string {
	return "permissions"
}

// IsRoot 是否为根节点
func (p *Permission) IsRoot() bool {
	return p.ParentID == nil || *p.ParentID == 0
}

// UserRole 用户角色关联模型
type UserRole struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RoleID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"role_id"`
}

// TableName 指定表名
func (UserRole) TableName() string {
	return "user_roles"
}

// RolePermission 角色权限关联模型
type RolePermission struct {
	RoleID       int64 `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
	PermissionID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"permission_id"`
}

// TableName 指定表名
func (RolePermission) TableName() string {
	return "role_permissions"
}

// 系统内置权限代码
const (
	PermCodeSystem     = "system"
	PermCodeUser       = "user"
	PermCodeUserView   = "user.view"
	PermCodeUserManage = "user.manage"
	PermCodeRole       = "role"
	PermCodeRoleView   = "role.view"
	PermCodeRoleManage = "role.manage"
)

// 系统内置角色
const RoleNameSystemAdmin = "系统管理员"

// PermissionSeed 内置权限定义，父节点以代码引用
type PermissionSeed struct {
	ParentCode string
	Name       string
	Code       string
	Type       string
	Path       string
	Sort       int
}

// DefaultPermissions 系统内置权限树，父节点排在子节点之前
func DefaultPermissions() []PermissionSeed {
	return []PermissionSeed{
		{Name: "系统管理", Code: PermCodeSystem, Type: PermissionTypeMenu, Path: "/system", Sort: 1},
		{ParentCode: PermCodeSystem, Name: "员工管理", Code: PermCodeUser, Type: PermissionTypeMenu, Path: "/system/users", Sort: 1},
		{ParentCode: PermCodeUser, Name: "查看员工", Code: PermCodeUserView, Type: PermissionTypeOperation, Sort: 1},
		{ParentCode: PermCodeUser, Name: "维护员工", Code: PermCodeUserManage, Type: PermissionTypeOperation, Sort: 2},
		{ParentCode: PermCodeSystem, Name: "角色管理", Code: PermCodeRole, Type: PermissionTypeMenu, Path: "/system/roles", Sort: 2},
		{ParentCode: PermCodeRole, Name: "查看角色", Code: PermCodeRoleView, Type: PermissionTypeOperation, Sort: 1},
		{ParentCode: PermCodeRole, Name: "维护角色", Code: PermCodeRoleManage, Type: PermissionTypeOperation, Sort: 2},
	}
}
