package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Telemetry validation
	if c.Telemetry.Interval <= 0 {
		errs = append(errs, errors.New("telemetry.interval must be positive"))
	}
	if c.Telemetry.Timeout <= 0 {
		errs = append(errs, errors.New("telemetry.timeout must be positive"))
	}
	if c.Telemetry.Timeout >= c.Telemetry.Interval {
		errs = append(errs, errors.New("telemetry.timeout must be less than telemetry.interval"))
	}

	// Engine validation
	if c.Engine.ForecastInterval <= 0 {
		errs = append(errs, errors.New("engine.forecast_interval must be positive"))
	}
	if c.Engine.HistoryRetention <= 0 {
		errs = append(errs, errors.New("engine.history_retention must be positive"))
	}
	if c.Engine.RegressionWindow < 2 {
		errs = append(errs, errors.New("engine.regression_window must be at least 2"))
	}
	for _, h := range c.Engine.RegressionHorizons {
		if h <= 0 {
			errs = append(errs, errors.New("engine.regression_horizons must all be positive"))
			break
		}
	}

	// Alerting validation
	if c.Alerting.Capacity <= 0 {
		errs = append(errs, errors.New("alerting.capacity must be positive"))
	}
	if c.Alerting.AutoResolveDelay <= 0 {
		errs = append(errs, errors.New("alerting.auto_resolve_delay must be positive"))
	}
	if c.Alerting.OptimizationFloor < 0 || c.Alerting.OptimizationFloor > 100 {
		errs = append(errs, errors.New("alerting.optimization_floor must be between 0 and 100"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
