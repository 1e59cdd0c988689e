package models

import (
	"fmt"
	"time"

	"github.com/maintly/fieldsync/pkg/api"
)

// AssetStatus определяет эксплуатационный статус оборудования
type AssetStatus string

const (
	AssetStatusOperational AssetStatus = "operational"
	AssetStatusDegraded    AssetStatus = "degraded"
	AssetStatusDown        AssetStatus = "down"
	AssetStatusRetired     AssetStatus = "retired"
)

// Asset представляет единицу оборудования на клиенте
type Asset struct {
	InstalledAt   *time.Time  `json:"installed_at,omitempty"`
	LastServiceAt *time.Time  `json:"last_service_at,omitempty"`
	Tag           string      `json:"tag"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Location      string      `json:"location"`
	Manufacturer  string      `json:"manufacturer,omitempty"`
	Model         string      `json:"model,omitempty"`
	SerialNumber  string      `json:"serial_number,omitempty"`
	Status        AssetStatus `json:"status"`
	ID            int64       `json:"id"`
}

// MeterReading представляет показание счетчика оборудования
type MeterReading struct {
	RecordedAt time.Time `json:"recorded_at"`
	Meter      string    `json:"meter"`
	Unit       string    `json:"unit"`
	Value      float64   `json:"value"`
	ID         int64     `json:"id"`
	AssetID    int64     `json:"asset_id"`
}

// ParseAssetStatus валидирует строковый статус из ответа сервера
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch AssetStatus(s) {
	case AssetStatusOperational, AssetStatusDegraded, AssetStatusDown, AssetStatusRetired:
		return AssetStatus(s), nil
	default:
		return "", fmt.Errorf("unknown asset status %q", s)
	}
}

// AssetFromAPI конвертирует wire-представление в доменную модель
func AssetFromAPI(a api.Asset) (*Asset, error) {
	status, err := ParseAssetStatus(a.Status)
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", a.ID, err)
	}

	return &Asset{
		ID:            a.ID,
		Tag:           a.Tag,
		Name:          a.Name,
		Category:      a.Category,
		Location:      a.Location,
		Status:        status,
		Manufacturer:  a.Manufacturer,
		Model:         a.Model,
		SerialNumber:  a.SerialNumber,
		InstalledAt:   a.InstalledAt,
		LastServiceAt: a.LastServiceAt,
	}, nil
}

// AssetsFromAPI конвертирует список оборудования
func AssetsFromAPI(list []api.Asset) ([]*Asset, error) {
	assets := make([]*Asset, 0, len(list))
	for _, a := range list {
		asset, err := AssetFromAPI(a)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// MeterReadingFromAPI конвертирует показание счетчика
func MeterReadingFromAPI(r api.MeterReading) *MeterReading {
	return &MeterReading{
		ID:         r.ID,
		AssetID:    r.AssetID,
		Meter:      r.Meter,
		Unit:       r.Unit,
		Value:      r.Value,
		RecordedAt: r.RecordedAt,
	}
}
