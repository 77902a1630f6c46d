package domain

import (
	"errors"
	"strings"
)

// RiskLevel — категориальная оценка, которую возвращает движок детекции.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var ErrMissingRiskLevel = errors.New("detection response has no risk_level")

// DetectionResult — ответ бэкенда на ручную проверку активности.
// Живет ровно одну отрисовку, нигде не сохраняется.
type DetectionResult struct {
	RiskLevel RiskLevel `json:"risk_level"`
	RiskScore float64   `json:"risk_score"`
	Insight   string    `json:"insight,omitempty"`
}

// Validate проверяет, что ответ вообще похож на результат детекции.
func (r *DetectionResult) Validate() error {
	if strings.TrimSpace(string(r.RiskLevel)) == "" {
		return ErrMissingRiskLevel
	}
	return nil
}
