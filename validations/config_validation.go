package validations

import (
	"github.com/AzielCF/az-laundry/core/config"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidateConfig rejects configurations the client cannot start with.
func ValidateConfig(cfg *config.Config) error {
	err := validation.Errors{
		"api_base_url":       validation.Validate(cfg.API.BaseURL, validation.Required, is.URL),
		"api_timeout":        validation.Validate(cfg.API.Timeout, validation.Required),
		"api_backup_timeout": validation.Validate(cfg.API.BackupTimeout, validation.Required),
		"cache_long_ttl":     validation.Validate(cfg.Cache.LongTTL, validation.Required),
		"cache_short_ttl":    validation.Validate(cfg.Cache.ShortTTL, validation.Required),
		"cache_key_prefix":   validation.Validate(cfg.Cache.KeyPrefix, validation.Required),
		"queue_key":          validation.Validate(cfg.Queue.Key, validation.Required),
		"session_key":        validation.Validate(cfg.Session.Key, validation.Required),
		"login_path":         validation.Validate(cfg.App.LoginPath, validation.Required, validation.Match(endpointPattern)),
		"storage_driver":     validation.Validate(cfg.Storage.Driver, validation.In("memory", "sqlite", "postgres", "gorm", "valkey")),
		"connectivity_mode":  validation.Validate(cfg.Connectivity.Mode, validation.In("static", "probe")),
	}.Filter()

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
