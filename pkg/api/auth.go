package api

// LoginRequest представляет запрос на аутентификацию техника
type LoginRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // пароль
	Tenant   string `json:"tenant"`   // slug организации (tenant)
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// RefreshRequest представляет запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh"` // действующий refresh token
}

// SessionResponse представляет ответ на успешный логин
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id"`     // UUID пользователя
	TenantSlug   string `json:"tenant_slug"` // slug организации
	SchemaName   string `json:"schema_name"` // имя схемы тенанта в БД сервера
}
