package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSessions   = errors.New("暂无学习记录可导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// 工作表名称
const (
	sessionsSheet = "学習記録"
	summarySheet  = "科目別集計"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 工作簿包含两个 Sheet：全部学习记录（日期降序）与按科目汇总。
type ExportService interface {
	ExportStudySessions(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  *timeutil.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clock *timeutil.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportStudySessions — 导出学习记录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportStudySessions(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	sessions, err := s.repo.StudySession.ListAllByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(sessions) == 0 {
		return nil, "", ErrExportNoSessions
	}

	stats := AggregateSessions(sessions, s.clock)

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sessionsSheet)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 学习记录 ──
	headers := []string{"日付", "科目", "時間（分）", "メモ"}
	for i, h := range headers {
		f.SetCellValue(sessionsSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sessionsSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sessionsSheet, "A", "A", 12)
	f.SetColWidth(sessionsSheet, "B", "B", 24)
	f.SetColWidth(sessionsSheet, "C", "C", 12)
	f.SetColWidth(sessionsSheet, "D", "D", 48)

	row := 2
	for _, ss := range sessions {
		memo := ""
		if ss.Memo != nil {
			memo = *ss.Memo
		}
		f.SetCellValue(sessionsSheet, cell("A", row), s.clock.FormatDate(ss.Date))
		f.SetCellValue(sessionsSheet, cell("B", row), ss.Subject)
		f.SetCellValue(sessionsSheet, cell("C", row), ss.Duration)
		f.SetCellValue(sessionsSheet, cell("D", row), memo)
		row++
	}

	// ── 科目汇总 ──
	summaryHeaders := []string{"科目", "回数", "合計（分）", "合計（時間）"}
	for i, h := range summaryHeaders {
		f.SetCellValue(summarySheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(summarySheet, "A1", cell(colName(len(summaryHeaders)-1), 1), headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "D", 14)

	row = 2
	for _, st := range stats.SubjectStats {
		f.SetCellValue(summarySheet, cell("A", row), st.Subject)
		f.SetCellValue(summarySheet, cell("B", row), st.Sessions)
		f.SetCellValue(summarySheet, cell("C", row), st.Duration)
		f.SetCellValue(summarySheet, cell("D", row), float64(st.Duration)/60)
		row++
	}
	f.SetCellValue(summarySheet, cell("A", row), "合計")
	f.SetCellValue(summarySheet, cell("B", row), stats.TotalSessions)
	f.SetCellValue(summarySheet, cell("C", row), stats.TotalDuration)
	f.SetCellValue(summarySheet, cell("D", row), float64(stats.TotalDuration)/60)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("study_sessions_%s.xlsx", s.clock.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
