package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hydroponica/ecdash/internal/names"
)

// GroupEC maps one experimental group (a school) to its target nutrient
// solution conductivity. The order of groups in the config is significant:
// it defines summary ordering and extremum tie-breaks.
type GroupEC struct {
	Name string  `mapstructure:"name" yaml:"name"`
	EC   float64 `mapstructure:"ec" yaml:"ec"`
}

// Config is the full dashboard configuration.
type Config struct {
	DataDir       string    `mapstructure:"data_dir" yaml:"data_dir"`
	ImageDir      string    `mapstructure:"image_dir" yaml:"image_dir"`
	ListenAddr    string    `mapstructure:"listen_addr" yaml:"listen_addr"`
	EnvMarker     string    `mapstructure:"env_marker" yaml:"env_marker"`
	GrowthKeyword string    `mapstructure:"growth_keyword" yaml:"growth_keyword"`
	Groups        []GroupEC `mapstructure:"groups" yaml:"groups"`
}

// DefaultGroups is the observed deployment: four schools, EC doubling per step.
func DefaultGroups() []GroupEC {
	return []GroupEC{
		{Name: "송도고", EC: 1.0},
		{Name: "하늘고", EC: 2.0},
		{Name: "아라고", EC: 4.0},
		{Name: "동산고", EC: 8.0},
	}
}

// GroupNames returns the configured group names in order.
func (c *Config) GroupNames() []string {
	out := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		out[i] = g.Name
	}
	return out
}

// ECFor looks up the target EC for a group name. The lookup is
// normalization-aware so sheet names written on another OS still resolve.
func (c *Config) ECFor(name string) (float64, bool) {
	for _, g := range c.Groups {
		if names.Equal(g.Name, name) {
			return g.EC, true
		}
	}
	return 0, false
}

// Save writes the configuration to cfgFile, or to ~/.ecdash/config.yaml when
// cfgFile is empty, creating the directory if necessary.
func Save(c *Config, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".ecdash")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ECDASH")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("image_dir", "images")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("env_marker", "환경데이터")
	v.SetDefault("growth_keyword", "생육결과")
	defGroups := make([]map[string]any, 0, 4)
	for _, g := range DefaultGroups() {
		defGroups = append(defGroups, map[string]any{"name": g.Name, "ec": g.EC})
	}
	v.SetDefault("groups", defGroups)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".ecdash"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Groups) == 0 {
		c.Groups = DefaultGroups()
	}
	return &c, nil
}
