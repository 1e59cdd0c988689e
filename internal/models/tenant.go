package models

// TenantContext описывает организацию (tenant), в рамках которой работает сессия.
// Устанавливается при логине/восстановлении сессии и сбрасывается при logout.
// Все ключи кеша и заголовки запросов выводятся из него.
type TenantContext struct {
	Slug       string `json:"slug"`        // slug организации (в URL и заголовке)
	SchemaName string `json:"schema_name"` // имя схемы тенанта на сервере
}

// IsZero reports whether no tenant is set.
func (t TenantContext) IsZero() bool {
	return t.Slug == ""
}
