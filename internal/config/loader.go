package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/globalping-bots/internal/common"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds how much of a config file is read.
const maxConfigSize = 1 << 20

// GetConfigPath determines the configuration file path.
// Priority:
// 1. the -config flag
// 2. GLOBALPING_BOTS_CONFIG environment variable
// 3. config.yaml, then config.json, in the current working directory
// 4. config.yaml, then config.json, in the executable's directory
// It returns "" when no file is found.
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if fileExists(configFilePathFlag) {
			return configFilePathFlag
		}
	}

	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		if fileExists(envPath) {
			return envPath
		}
	}

	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"config.yaml", "config.json"}
	var locations []string
	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && (errCwd != nil || exeDir != cwd) {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range defaultFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// LoadBotConfig reads the file GetConfigPath selects on top of the defaults,
// then applies environment overrides. Without a file the defaults and
// environment are used as is.
func LoadBotConfig(providedPath string) (*BotConfig, string, error) {
	cfg := NewDefaultBotConfig()

	filePath := GetConfigPath(providedPath)
	if providedPath != "" && filePath != providedPath {
		return nil, "", common.NewConfigurationError("", "", "config file "+providedPath+" does not exist")
	}

	if filePath != "" {
		if err := loadFile(filePath, cfg); err != nil {
			return nil, filePath, err
		}
	}

	ApplyEnvOverrides(cfg)
	return cfg, filePath, nil
}

func loadFile(filePath string, cfg *BotConfig) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return common.WrapError(err, "failed to stat config file")
	}
	if info.Size() > maxConfigSize {
		return common.NewConfigurationError("", "", "config file "+filePath+" is too large")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return common.WrapError(err, "failed to parse config content")
	}
	return nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *BotConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// SaveBotConfig writes cfg to filePath, as YAML or JSON by extension.
func SaveBotConfig(cfg *BotConfig, filePath string) error {
	if cfg == nil {
		return common.NewConfigurationError("", "", "config cannot be nil")
	}

	var data []byte
	var err error
	if isYAMLFile(filepath.Ext(filePath)) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return common.WrapError(err, "failed to marshal config")
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return common.WrapError(err, "failed to create config directory")
	}
	return os.WriteFile(filePath, data, 0600)
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
