package config

// FindConfigFile exports findConfig for testing.
//
//nolint:gochecknoglobals // Test-only exports
var FindConfigFile = findConfig
