package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cosmosops/analyticalctl/internal/classify"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/cosmos/azcli"
	"github.com/cosmosops/analyticalctl/internal/meta"
	"github.com/cosmosops/analyticalctl/internal/retry"
	"github.com/cosmosops/analyticalctl/internal/util/viper"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var defaultConfigFileName = "config.yaml"

// Returns the expanded default config path depending on what
// environment variables are set. If XDG_CONFIG_HOME is set,
// the default is $XDG_CONFIG_HOME/analyticalctl,
// otherwise the default is os.UserHomeDir()/.config/analyticalctl.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		var err error
		val, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(val, ".config")
	}
	val = filepath.Join(val, meta.CLIName)
	return os.ExpandEnv(val), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// GetConfig returns the configuration for this instance of the CLI
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err == nil {
		// an explicit file must load cleanly
		vip, err := viper.NewViperE(path)
		if err != nil {
			return nil, err
		}
		return BuildProfiledConfig(profile, path, vip), nil
	}

	if path != defaultConfigFilePath {
		return nil, fmt.Errorf("the provided config file path does not exist: %s", path)
	}

	vip, err := viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
	if err != nil {
		return nil, err
	}
	return BuildProfiledConfig(profile, path, vip), nil
}

type Key struct{}

// ConfigKey locates the Hook in a command context
var ConfigKey = Key{}

// Hook is the narrow view of the profiled configuration the commands use
type Hook interface {
	// GetString returns a string value from the configuration
	GetString(key string) string
	// GetBool returns a boolean value from the configuration
	GetBool(key string) bool
	// GetInt returns an integer value from the configuration
	GetInt(key string) int
	// GetIntOrElse returns an integer value from the configuration or a default
	GetIntOrElse(key string, orElse int) int
	// GetDuration returns a duration value from the configuration
	GetDuration(key string) time.Duration
	// Set sets an override for a given key
	Set(k string, v any)
	// BindFlag takes a specific configuration path and
	// binds it to a specific flag
	BindFlag(configPath string, f *pflag.Flag) error
	// The profile for this configuration
	GetProfile() string
	// The file path used to load this configuration
	GetPath() string
}

// ProfiledConfig is a Viper with an associated profile name. Reads are
// served from the profile's sub-tree.
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetDuration(key string) time.Duration {
	return p.subViper.GetDuration(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv == nil {
		// the profile has no section in the file, but its env vars still apply
		subv = v.New()
	}
	envPrefix := viper.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(profile, "-", "_"))
	viper.ConfigureEnvVars(subv, envPrefix)
	setDefaults(subv)

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

// setDefaults registers the values used when neither the file, the
// environment nor a flag provides one.
func setDefaults(vip *v.Viper) {
	vip.SetDefault(common.OutputConfigPath, common.DefaultOutputFormat)
	vip.SetDefault(common.ColorConfigPath, common.DefaultColorMode)
	vip.SetDefault(common.LogLevelConfigPath, common.DefaultLogLevel)
	vip.SetDefault(common.MaxAttemptsConfigPath, retry.DefaultMaxAttempts)
	vip.SetDefault(common.RetryDelayConfigPath, retry.DefaultDelay)
	vip.SetDefault(common.PrimaryPathConfigPath, classify.DefaultRetentionPaths().Primary)
	vip.SetDefault(common.FallbackPathConfigPath, classify.DefaultRetentionPaths().Fallback)
	vip.SetDefault(common.AzPathConfigPath, azcli.DefaultBinary)
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)
	defaultLogPath := filepath.Join(configDir, "logs", meta.CLIName+".log")

	return map[string]any{
		profileName: map[string]any{
			common.OutputConfigPath:  common.DefaultOutputFormat,
			common.LogFileConfigPath: defaultLogPath,
			"retry": map[string]any{
				"max-attempts": retry.DefaultMaxAttempts,
				"delay":        retry.DefaultDelay.String(),
			},
		},
	}
}
