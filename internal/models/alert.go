package models

import (
	"fmt"
	"time"

	"github.com/maintly/fieldsync/pkg/api"
)

// AlertStatus определяет статус алерта
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// AlertSeverity определяет серьезность алерта
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert представляет алерт IoT-мониторинга на клиенте
type Alert struct {
	TriggeredAt    time.Time     `json:"triggered_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	RuleName       string        `json:"rule_name"`
	AssetName      string        `json:"asset_name"`
	Message        string        `json:"message"`
	AcknowledgedBy string        `json:"acknowledged_by,omitempty"`
	Status         AlertStatus   `json:"status"`
	Severity       AlertSeverity `json:"severity"`
	ID             int64         `json:"id"`
	AssetID        int64         `json:"asset_id"`
}

// ParseAlertStatus валидирует строковый статус из ответа сервера
func ParseAlertStatus(s string) (AlertStatus, error) {
	switch AlertStatus(s) {
	case AlertStatusActive, AlertStatusAcknowledged, AlertStatusResolved:
		return AlertStatus(s), nil
	default:
		return "", fmt.Errorf("unknown alert status %q", s)
	}
}

// ParseAlertSeverity валидирует строковую серьезность из ответа сервера
func ParseAlertSeverity(s string) (AlertSeverity, error) {
	switch AlertSeverity(s) {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical:
		return AlertSeverity(s), nil
	default:
		return "", fmt.Errorf("unknown alert severity %q", s)
	}
}

// AlertFromAPI конвертирует wire-представление в доменную модель.
// Валидация выполняется на границе: неизвестный статус или severity
// считается ошибкой декодирования, а не молча пропускается.
func AlertFromAPI(a api.Alert) (*Alert, error) {
	status, err := ParseAlertStatus(a.Status)
	if err != nil {
		return nil, fmt.Errorf("alert %d: %w", a.ID, err)
	}
	severity, err := ParseAlertSeverity(a.Severity)
	if err != nil {
		return nil, fmt.Errorf("alert %d: %w", a.ID, err)
	}

	return &Alert{
		ID:             a.ID,
		RuleName:       a.RuleName,
		AssetID:        a.AssetID,
		AssetName:      a.AssetName,
		Severity:       severity,
		Status:         status,
		Message:        a.Message,
		TriggeredAt:    a.TriggeredAt,
		AcknowledgedAt: a.AcknowledgedAt,
		AcknowledgedBy: a.AcknowledgedBy,
		ResolvedAt:     a.ResolvedAt,
	}, nil
}

// AlertsFromAPI конвертирует список алертов
func AlertsFromAPI(list []api.Alert) ([]*Alert, error) {
	alerts := make([]*Alert, 0, len(list))
	for _, a := range list {
		alert, err := AlertFromAPI(a)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
