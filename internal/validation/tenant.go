package validation

import (
	"fmt"
	"regexp"
)

// TenantSlugPattern определяет допустимый формат tenant slug
// Только строчные латинские буквы (a-z), цифры (0-9), дефис (-)
// Не может начинаться или заканчиваться дефисом
// Длина: 2-48 символов
var TenantSlugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,46}[a-z0-9])?$`)

const (
	// MinTenantSlugLen минимальная длина tenant slug
	MinTenantSlugLen = 2
	// MaxTenantSlugLen максимальная длина tenant slug
	MaxTenantSlugLen = 48
)

// ValidateTenantSlug проверяет, что slug организации соответствует требованиям.
// Slug попадает в заголовок X-Tenant и в ключи кеша, поэтому валидируется
// до того, как сессия будет сохранена.
func ValidateTenantSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("tenant slug cannot be empty")
	}

	if len(slug) < MinTenantSlugLen {
		return fmt.Errorf("tenant slug must be at least %d characters long", MinTenantSlugLen)
	}

	if len(slug) > MaxTenantSlugLen {
		return fmt.Errorf("tenant slug must not exceed %d characters", MaxTenantSlugLen)
	}

	if !TenantSlugPattern.MatchString(slug) {
		return fmt.Errorf("tenant slug can only contain lowercase letters (a-z), numbers (0-9), and hyphens (-)")
	}

	return nil
}

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: только латинские буквы (a-z, A-Z), цифры (0-9), точка, нижнее подчеркивание
// Длина: 3-64 символа
func ValidateUsername(username string) error {
	const (
		minLen = 3
		maxLen = 64
	)

	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < minLen {
		return fmt.Errorf("username must be at least %d characters long", minLen)
	}

	if len(username) > maxLen {
		return fmt.Errorf("username must not exceed %d characters", maxLen)
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), dots (.) and underscores (_)")
	}

	return nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]{3,64}$`)
