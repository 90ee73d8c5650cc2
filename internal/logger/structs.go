package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"`
	UseConsoleWriter bool `mapstructure:"useconsolewriter"`
}

// Rotation describes one rolling log file.
type Rotation struct {
	Name       string `mapstructure:"name"`
	MaxSize    int    `mapstructure:"maxsize"` // megabytes
	MaxBackups int    `mapstructure:"maxbackups"`
	MaxAge     int    `mapstructure:"maxage"` // days
}

// LogFile implements a file based logger with one rolling file per stream.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`

	Access Rotation `mapstructure:"access"`
	Error  Rotation `mapstructure:"error"`
	Info   Rotation `mapstructure:"info"`
	Trace  Rotation `mapstructure:"trace"`
	Warn   Rotation `mapstructure:"warn"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole writes the access log to stdout.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	// File logging for non container deployments.
	File LogFile `mapstructure:"file"`
}
