package spec

import "github.com/zx06/infkeychain/internal/errors"

type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Args        []string   `json:"args,omitempty" yaml:"args,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// DomainSpec 描述 keychain 错误域及其保留码。
type DomainSpec struct {
	Name  string         `json:"name" yaml:"name"`
	Codes map[string]int `json:"codes" yaml:"codes"`
}

type Spec struct {
	SchemaVersion int           `json:"schema_version" yaml:"schema_version"`
	Commands      []CommandSpec `json:"commands" yaml:"commands"`
	Backends      []string      `json:"backends" yaml:"backends"`
	ErrorCodes    []errors.Code `json:"error_codes" yaml:"error_codes"`
	ErrorDomain   DomainSpec    `json:"error_domain" yaml:"error_domain"`
}
