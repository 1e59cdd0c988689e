package api

import "time"

// Asset представляет единицу оборудования в формате REST API
type Asset struct {
	InstalledAt   *time.Time `json:"installed_at,omitempty"`
	LastServiceAt *time.Time `json:"last_service_at,omitempty"`
	Tag           string     `json:"tag"` // инвентарный тег (PUMP-014)
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Location      string     `json:"location"`
	Status        string     `json:"status"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	Model         string     `json:"model,omitempty"`
	SerialNumber  string     `json:"serial_number,omitempty"`
	ID            int64      `json:"id"`
}

// AssetListResponse представляет страницу списка оборудования
type AssetListResponse struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Asset `json:"results"`
	Count    int     `json:"count"`
}

// MeterReading представляет показание счетчика оборудования
type MeterReading struct {
	RecordedAt time.Time `json:"recorded_at"`
	Meter      string    `json:"meter"` // имя счетчика (runtime_hours, temperature)
	Unit       string    `json:"unit"`
	Value      float64   `json:"value"`
	ID         int64     `json:"id"`
	AssetID    int64     `json:"asset_id"`
}

// MeterReadingRequest представляет запрос на ручной ввод показания
type MeterReadingRequest struct {
	RecordedAt time.Time `json:"recorded_at"`
	Meter      string    `json:"meter"`
	Unit       string    `json:"unit,omitempty"`
	Value      float64   `json:"value"`
}
