package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetAllSettings returns a map of the effective settings, for diagnostics.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":          Global.App.Debug,
		"app_version":        Global.App.Version,
		"api_base_url":       Global.API.BaseURL,
		"api_timeout":        Global.API.Timeout.String(),
		"api_backup_timeout": Global.API.BackupTimeout.String(),
		"cache_long_ttl":     Global.Cache.LongTTL.String(),
		"cache_short_ttl":    Global.Cache.ShortTTL.String(),
		"cache_critical":     Global.Cache.CriticalEndpoints,
		"cache_dedupe":       Global.Cache.DedupeRefresh,
		"queue_auto_replay":  Global.Queue.AutoReplay,
		"storage_driver":     Global.Storage.Driver,
		"connectivity_mode":  Global.Connectivity.Mode,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvMs reads a millisecond count, the unit the admin client has always
// used for its timeouts and TTLs.
func getEnvMs(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
