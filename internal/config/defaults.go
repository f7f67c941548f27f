package config

const (
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultExportFormat       = "csv"
	defaultFileTimeoutSeconds = 0
	defaultSimilarThreshold   = 0.92
)

var defaultSignals = []string{"content", "metadata"}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Scan: Scan{
			Signals:            append([]string(nil), defaultSignals...),
			FileTimeoutSeconds: defaultFileTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Export: Export{
			Format:           defaultExportFormat,
			SimilarThreshold: defaultSimilarThreshold,
		},
	}
}
