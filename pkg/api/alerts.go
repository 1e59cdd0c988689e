package api

import "time"

// Alert представляет алерт мониторинга в формате REST API
type Alert struct {
	TriggeredAt    time.Time  `json:"triggered_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	RuleName       string     `json:"rule_name"`
	AssetName      string     `json:"asset_name"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	ID             int64      `json:"id"`
	AssetID        int64      `json:"asset_id"`
}

// AlertListResponse представляет страницу списка алертов (DRF pagination)
type AlertListResponse struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Alert `json:"results"`
	Count    int     `json:"count"`
}

// AlertActionRequest представляет тело запроса acknowledge/resolve
type AlertActionRequest struct {
	Note string `json:"note,omitempty"` // опциональный комментарий техника
}
