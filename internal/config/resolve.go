package config

import (
	"github.com/zx06/infkeychain/internal/errors"
)

// Resolve 合并 config/profile/format/backend：CLI > ENV > Config。
func Resolve(opts Options) (Resolved, *errors.XError) {
	// 1) 读取配置文件（如有）
	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	// 2) 选择 profile：--profile > INFKC_PROFILE > profiles.default > 空
	profile := ""
	explicit := false
	if opts.CLIProfileSet {
		profile = opts.CLIProfile
		explicit = true
	} else if opts.EnvProfile != "" {
		profile = opts.EnvProfile
		explicit = true
	} else if _, ok := cfg.Profiles["default"]; ok {
		profile = "default"
	}

	// 3) 获取完整 profile；显式指定却不存在时报错，避免写入错误的 service
	var selected Profile
	if profile != "" {
		p, ok := cfg.Profiles[profile]
		if !ok && explicit {
			return Resolved{}, errors.New(errors.CodeCfgInvalid, "profile not found", map[string]any{"name": profile, "config_path": cfgPath})
		}
		selected = p
	}

	// 4) format：--format > INFKC_FORMAT > profile.format > format > auto
	format := firstNonEmpty(valueIfSet(opts.CLIFormatSet, opts.CLIFormat), opts.EnvFormat, selected.Format, cfg.Format, "auto")

	// 5) backend：--backend > INFKC_BACKEND > profile.backend > backend > os
	backend := firstNonEmpty(valueIfSet(opts.CLIBackendSet, opts.CLIBackend), opts.EnvBackend, selected.Backend, cfg.Backend, DefaultBackend)

	// 6) service：profile.service > INFKC_SERVICE（--service 由命令自身处理）
	service := firstNonEmpty(selected.Service, opts.EnvService)

	logLevel := firstNonEmpty(valueIfSet(opts.CLILogLevelSet, opts.CLILogLevel), opts.EnvLogLevel, cfg.LogLevel)

	return Resolved{
		ConfigPath:  cfgPath,
		ProfileName: profile,
		Format:      format,
		Backend:     backend,
		Service:     service,
		LogLevel:    logLevel,
		Profile:     selected,
		File:        cfg,
	}, nil
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
