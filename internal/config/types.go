package config

// Config is the complete gpop configuration.
type Config struct {
	Service  ServiceConfig   `yaml:"service"`
	Journal  JournalConfig   `yaml:"journal"`
	API      APIConfig       `yaml:"api"`
	Workload []WorkloadEntry `yaml:"workload,omitempty"`

	// SourcePath is the absolute path of the loaded file, empty for defaults.
	SourcePath string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// JournalConfig controls the SQLite run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Listen string     `yaml:"listen"`
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken is a scoped bearer token. Use ${VAR} to keep the secret out of
// the file.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// WorkloadEntry seeds one command into the queue, Repeat times (default 1).
// Opcodes accept YAML hex literals such as 0xBEFF.
type WorkloadEntry struct {
	Opcode    uint32 `yaml:"opcode"`
	HighPower bool   `yaml:"high_power"`
	Timestamp uint64 `yaml:"timestamp"`
	Repeat    int    `yaml:"repeat,omitempty"`
}

// EnvOverrides are applied after the file is parsed.
type EnvOverrides struct {
	LogLevel       string `env:"GPOP_LOG_LEVEL"`
	JournalPath    string `env:"GPOP_JOURNAL_PATH"`
	JournalEnabled *bool  `env:"GPOP_JOURNAL_ENABLED"`
	APIListen      string `env:"GPOP_API_LISTEN"`
}

// Defaults returns a Config with the built-in defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "gpop",
			LogLevel: "info",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "./data/gpop.db",
		},
		API: APIConfig{
			Listen: "127.0.0.1:8088",
		},
	}
}
