package service

import (
	"github.com/taisuke86/akiramehende/internal/dto"
)

// ExamLevel 考试难度等级
type ExamLevel string

const (
	ExamLevelBasic    ExamLevel = "basic"
	ExamLevelAdvanced ExamLevel = "advanced"
	ExamLevelExpert   ExamLevel = "expert"
)

// ExamDefinition IPA 考试定义（静态参考数据）
type ExamDefinition struct {
	Code             string
	Name             string
	ShortName        string
	Level            ExamLevel
	MinHours         int
	MaxHours         int
	RecommendedHours int
	Description      string
	ExamTimes        string // 实施频率
}

var examCatalog = []ExamDefinition{
	{
		Code: "IP", Name: "ITパスポート試験", ShortName: "ITパスポート",
		Level: ExamLevelBasic, MinHours: 100, MaxHours: 150, RecommendedHours: 120,
		Description: "ITの基礎知識を問う国家試験", ExamTimes: "年間を通じて実施",
	},
	{
		Code: "FE", Name: "基本情報技術者試験", ShortName: "基本情報",
		Level: ExamLevelBasic, MinHours: 200, MaxHours: 300, RecommendedHours: 250,
		Description: "ITエンジニアの登竜門", ExamTimes: "年2回（春期・秋期）",
	},
	{
		Code: "AP", Name: "応用情報技術者試験", ShortName: "応用情報",
		Level: ExamLevelAdvanced, MinHours: 300, MaxHours: 500, RecommendedHours: 400,
		Description: "ワンランク上のITエンジニアを目指す", ExamTimes: "年2回（春期・秋期）",
	},
	{
		Code: "SC", Name: "情報処理安全確保支援士試験", ShortName: "情報処理安全確保支援士",
		Level: ExamLevelExpert, MinHours: 500, MaxHours: 700, RecommendedHours: 600,
		Description: "サイバーセキュリティ分野の国家資格", ExamTimes: "年2回（春期・秋期）",
	},
	{
		Code: "SA", Name: "システムアーキテクト試験", ShortName: "システムアーキテクト",
		Level: ExamLevelExpert, MinHours: 600, MaxHours: 800, RecommendedHours: 700,
		Description: "システム設計・アーキテクチャの専門家", ExamTimes: "年1回（秋期）",
	},
	{
		Code: "PM", Name: "プロジェクトマネージャ試験", ShortName: "プロジェクトマネージャ",
		Level: ExamLevelExpert, MinHours: 500, MaxHours: 700, RecommendedHours: 600,
		Description: "プロジェクト管理の専門家", ExamTimes: "年1回（春期）",
	},
	{
		Code: "DB", Name: "データベーススペシャリスト試験", ShortName: "データベーススペシャリスト",
		Level: ExamLevelExpert, MinHours: 500, MaxHours: 700, RecommendedHours: 600,
		Description: "データベース分野の専門家", ExamTimes: "年1回（春期）",
	},
	{
		Code: "NW", Name: "ネットワークスペシャリスト試験", ShortName: "ネットワークスペシャリスト",
		Level: ExamLevelExpert, MinHours: 500, MaxHours: 700, RecommendedHours: 600,
		Description: "ネットワーク分野の専門家", ExamTimes: "年1回（秋期）",
	},
}

// GetExamByCode 按代码查找考试（区分大小写）
func GetExamByCode(code string) (ExamDefinition, bool) {
	for _, exam := range examCatalog {
		if exam.Code == code {
			return exam, true
		}
	}
	return ExamDefinition{}, false
}

// AllExams 返回全部考试（副本）
func AllExams() []ExamDefinition {
	out := make([]ExamDefinition, len(examCatalog))
	copy(out, examCatalog)
	return out
}

// ExamsByLevel 返回指定等级的考试
func ExamsByLevel(level ExamLevel) []ExamDefinition {
	out := make([]ExamDefinition, 0, len(examCatalog))
	for _, exam := range examCatalog {
		if exam.Level == level {
			out = append(out, exam)
		}
	}
	return out
}

// LevelLabel 等级显示名
func LevelLabel(level ExamLevel) string {
	switch level {
	case ExamLevelBasic:
		return "基本レベル"
	case ExamLevelAdvanced:
		return "応用レベル"
	case ExamLevelExpert:
		return "高度レベル"
	default:
		return ""
	}
}

func toExamResponse(exam ExamDefinition) dto.ExamResponse {
	return dto.ExamResponse{
		Code:             exam.Code,
		Name:             exam.Name,
		ShortName:        exam.ShortName,
		Level:            string(exam.Level),
		LevelLabel:       LevelLabel(exam.Level),
		MinHours:         exam.MinHours,
		MaxHours:         exam.MaxHours,
		RecommendedHours: exam.RecommendedHours,
		Description:      exam.Description,
		ExamTimes:        exam.ExamTimes,
	}
}
