package model

import (
	"golang.org/x/crypto/bcrypt"
)

// UserInfo 员工账号模型
type UserInfo struct {
	AuditModel
	UserName    string `gorm:"type:varchar(50);index;not null" json:"user_name"` // 用户名
	ChineseName string `gorm:"type:varchar(50)" json:"chinese_name"`             // 中文名
	Phone       string `gorm:"type:varchar(20);index" json:"phone"`              // 手机号
	Email       string `gorm:"type:varchar(100);index" json:"email"`             // 邮箱
	Password    string `gorm:"type:varchar(255)" json:"-"`                       // 密码哈希
	DeptID      int64  `gorm:"index" json:"dept_id"`                             // 所属部门
	PositionID  int64  `gorm:"index" json:"position_id"`                         // 职位
	Status      Status `gorm:"type:smallint;not null" json:"status"`             // 状态
	Memo        string `gorm:"type:varchar(500)" json:"memo,omitempty"`          // 备注
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_infos"
}

// SetPassword 设置密码（哈希存储）
func (u *UserInfo) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// VerifyPassword 验证密码
func (u *UserInfo) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsValid 检查账号是否启用
func (u *UserInfo) IsValid() bool {
	return u.Status == StatusValid
}
