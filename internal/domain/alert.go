package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Score хранит числовой риск. MySQL DECIMAL приходит из бэкенда строкой,
// поэтому принимаем и число, и строку.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Alert — строка таблицы алертов, из нее собирается отчет и тренд риска.
type Alert struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	AlertType   string    `json:"alert_type"`
	Description string    `json:"description"`
	RiskScore   Score     `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Status      string    `json:"status"`
	CreatedAt   string    `json:"created_at"`
}
