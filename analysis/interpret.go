package analysis

import (
	"strings"

	"patternleader/models"
)

var riskMessages = map[models.RiskLevel]string{
	models.RiskLevelLow:     "낮은 리스크로 안정적인 투자 환경입니다.",
	models.RiskLevelMedium:  "중간 수준의 리스크가 있어 신중한 접근이 필요합니다.",
	models.RiskLevelHigh:    "높은 리스크 상황으로 주의가 필요합니다.",
	models.RiskLevelExtreme: "극도로 높은 리스크 상황으로 매우 주의해야 합니다.",
}

// buildInterpretation assembles the Korean reading of the analysis: crowd
// state, greed-fear balance, risk level and where today sits in the range.
func (a *PsychologyAnalyzer) buildInterpretation(
	ratios models.PsychologyRatios,
	sentiment float64,
	risk models.RiskLevel,
	stats models.DistributionStats,
	position float64,
) string {
	parts := make([]string, 0, 4)

	switch {
	case ratios.Buyers > 0.6:
		parts = append(parts, "매수 심리가 강한 상황입니다.")
	case ratios.Sellers > 0.5:
		parts = append(parts, "매도 압력이 높은 상황입니다.")
	default:
		parts = append(parts, "시장 참여자들이 관망하는 상황입니다.")
	}

	switch {
	case sentiment > 0.5:
		parts = append(parts, "탐욕 지수가 높아 과열 가능성이 있습니다.")
	case sentiment < -0.5:
		parts = append(parts, "공포 지수가 높아 과도한 하락일 수 있습니다.")
	default:
		parts = append(parts, "감정적 균형이 유지되고 있습니다.")
	}

	if msg, ok := riskMessages[risk]; ok {
		parts = append(parts, msg)
	} else {
		parts = append(parts, "리스크 평가를 확인하세요.")
	}

	switch {
	case position > stats.Percentile75:
		parts = append(parts, "현재 위치가 상위 25% 구간으로 고점 근처입니다.")
	case position < stats.Percentile25:
		parts = append(parts, "현재 위치가 하위 25% 구간으로 저점 근처입니다.")
	default:
		parts = append(parts, "현재 위치가 정상 범위 내에 있습니다.")
	}

	return strings.Join(parts, " ")
}
