package config

// Resolve returns the storage module ID selected by the configuration,
// falling back to DefaultStorage.
func Resolve(cfg *Config) string {
	if cfg.Storage != "" {
		return cfg.Storage
	}
	return DefaultStorage
}
