package config

// File 表示 infkeychain.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config。
type File struct {
	Format   string             `yaml:"format"`
	Backend  string             `yaml:"backend"` // os | keyring | memory
	LogLevel string             `yaml:"log_level"`
	Keyring  KeyringConfig      `yaml:"keyring"`
	Profiles map[string]Profile `yaml:"profiles"`
	MCP      MCPConfig          `yaml:"mcp"`
}

// Profile 绑定一个 service name 及其默认 backend/输出格式。
type Profile struct {
	Description string `yaml:"description"`
	Service     string `yaml:"service"`
	Backend     string `yaml:"backend"`
	Format      string `yaml:"format"`
}

// KeyringConfig 是 "keyring" backend（99designs/keyring）的选项。
type KeyringConfig struct {
	Backends       []string `yaml:"backends"` // keychain | secret-service | kwallet | wincred | keyctl | pass | file
	FileDir        string   `yaml:"file_dir"`
	FilePassphrase string   `yaml:"file_passphrase"` // 支持 keyring:xxx 引用
	KeychainName   string   `yaml:"keychain_name"`
	PassDir        string   `yaml:"pass_dir"`
}

type MCPConfig struct {
	Transport   string        `yaml:"transport"`
	AllowReveal bool          `yaml:"allow_reveal"` // 是否允许 get_password 工具返回明文
	HTTP        MCPHTTPConfig `yaml:"http"`
}

type MCPHTTPConfig struct {
	Addr                string `yaml:"addr"`
	AuthToken           string `yaml:"auth_token"` // 支持 keyring:xxx 引用
	AllowPlaintextToken bool   `yaml:"allow_plaintext_token"`
}

const DefaultBackend = "os"

type Resolved struct {
	ConfigPath  string
	ProfileName string
	Format      string
	Backend     string
	Service     string
	LogLevel    string
	Profile     Profile
	File        File
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIProfile     string
	CLIProfileSet  bool
	CLIFormat      string
	CLIFormatSet   bool
	CLIBackend     string
	CLIBackendSet  bool
	CLILogLevel    string
	CLILogLevelSet bool

	// ENV（由调用方注入，便于测试）
	EnvProfile  string
	EnvFormat   string
	EnvBackend  string
	EnvService  string
	EnvLogLevel string

	// HomeDir 用于默认路径计算（为空则自动探测）。
	HomeDir string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string
}
