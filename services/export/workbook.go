package exportsvc

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/student"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	homeworkLabels = map[evaluation.HomeworkStatus]string{
		evaluation.HomeworkDone:       "완료",
		evaluation.HomeworkIncomplete: "미완료",
		evaluation.HomeworkNone:       "없음",
	}
	attitudeLabels = map[evaluation.Attitude]string{
		evaluation.AttitudeHigh:   "상",
		evaluation.AttitudeMiddle: "중",
		evaluation.AttitudeLow:    "하",
	}
)

type Service struct {
	loc *time.Location
}

func NewService(loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{loc: loc}
}

// StudentLogs writes the student's logs (expected newest first) to a workbook.
// The first row is a title, the second the header; data starts on row 3.
func (svc *Service) StudentLogs(st student.Student, logs []evaluation.Log, cat curriculum.Catalog) (*bytes.Buffer, string, error) {
	sheet := "평가기록"
	headers := []string{"날짜", "점수", "완료 단원", "숙제", "태도", "코멘트"}
	widths := []float64{18, 8, 40, 10, 8, 60}

	f, err := newWorkbook(sheet, fmt.Sprintf("%s (%s) 평가 기록", st.Name, st.Grade), headers, widths)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	idx := cat.Index()
	for i, l := range logs {
		row := i + 3
		titles := make([]string, 0, len(l.CompletedUnitIDs))
		for _, id := range l.CompletedUnitIDs {
			if u, ok := idx[id]; ok {
				titles = append(titles, u.Title)
			}
		}
		values := []interface{}{
			l.CreatedAt.In(svc.loc).Format("2006-01-02 15:04"),
			l.Score,
			strings.Join(titles, ", "),
			homeworkLabels[l.Homework],
			attitudeLabels[l.Attitude],
			l.Comment,
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return nil, "", err
		}
	}

	buf, err := write(f)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("evaluations_%d.xlsx", st.ID), nil
}

// RiskStudents writes the risk list of a dashboard to a workbook.
func (svc *Service) RiskStudents(d dashboard.Dashboard) (*bytes.Buffer, string, error) {
	sheet := "위험학생"
	headers := []string{"학생 ID", "이름", "학년", "최근 평균"}
	widths := []float64{10, 16, 8, 12}

	f, err := newWorkbook(sheet, d.Date+" 관리 필요 학생", headers, widths)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	for i, r := range d.RiskStudents {
		if err := setRow(f, sheet, i+3, []interface{}{r.StudentID, r.Name, r.Grade, r.RollingAverage}); err != nil {
			return nil, "", err
		}
	}

	buf, err := write(f)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("risk_students_%s.xlsx", d.Date), nil
}

func newWorkbook(sheet, title string, headers []string, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, w := range widths {
		col := colName(i)
		_ = f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "creating style")
	}

	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	for i, h := range headers {
		_ = f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	_ = f.SetCellStyle(sheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cell(colName(i), row), v); err != nil {
			return errors.Wrapf(err, "writing row %d", row)
		}
	}
	return nil
}

func write(f *excelize.File) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
