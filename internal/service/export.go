package service

import (
	"io"
	"strings"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "员工"

var exportHeaders = []string{"ID", "用户名", "中文名", "手机号码", "Email", "部门", "职位", "角色", "状态"}

// writeUsersXLSX 将员工列表写为 xlsx
func writeUsersXLSX(rows []*UserOutput, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 8); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "I", 18); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.UserName,
			row.ChineseName,
			row.Phone,
			row.Email,
			row.DeptName,
			row.PositionName,
			roleNames(row.Roles),
			statusText(row),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func roleNames(roles []RoleBrief) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return strings.Join(names, ",")
}

func statusText(row *UserOutput) string {
	if row.Status == model.StatusValid {
		return "正常"
	}
	return "冻结"
}
