package viper

import (
	"strings"

	"github.com/cosmosops/analyticalctl/internal/meta"
	"github.com/cosmosops/analyticalctl/internal/util"
	v "github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable the CLI reads.
var EnvPrefix = strings.ToUpper(meta.CLIName)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// InitializeDefaultViper initializes a viper instance with default values and a path to a file
// If the file does not exist, it will be created with the default values
func InitializeDefaultViper(defaultValues map[string]any, path string) (*v.Viper, error) {
	if err := util.InitDir(path, 0o755); err != nil {
		return nil, err
	}

	rv := NewViper(path)

	if len(rv.AllSettings()) == 0 {
		// nothing loaded, so seed the file with the defaults
		if err := rv.MergeConfigMap(defaultValues); err != nil {
			return nil, err
		}
		if err := rv.WriteConfig(); err != nil {
			return nil, err
		}
	}

	return rv, nil
}

func NewViperE(path string) (*v.Viper, error) {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, EnvPrefix)
	if err := rv.ReadInConfig(); err != nil {
		return nil, err
	}
	return rv, nil
}

func NewViper(path string) *v.Viper {
	rv := v.New()
	rv.SetConfigFile(path)
	ConfigureEnvVars(rv, EnvPrefix)
	_ = rv.ReadInConfig()
	return rv
}

// ConfigureEnvVars lets keys such as retry.max-attempts resolve from
// <PREFIX>_RETRY_MAX_ATTEMPTS.
func ConfigureEnvVars(vip *v.Viper, prefix string) {
	vip.AutomaticEnv()
	vip.SetEnvPrefix(prefix)
	vip.SetEnvKeyReplacer(envKeyReplacer)
}
