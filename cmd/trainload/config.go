package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// profileConfig mirrors the subset of AthleteProfile the CLI can source
// from a config file or environment, the way the teacher's config.Config
// loads sync preferences: defaults first, then file, then environment.
type profileConfig struct {
	FTPWatts          float64 `mapstructure:"ftp_watts"`
	LTHRBpm           float64 `mapstructure:"lthr_bpm"`
	ThresholdPaceSecM float64 `mapstructure:"threshold_pace_sec_per_m"`
	CriticalSwimSpeed float64 `mapstructure:"critical_swim_speed_sec_per_m"`
	Workers           int     `mapstructure:"workers"`
	DataDir           string  `mapstructure:"data_dir"`

	DevFieldCatalog string `mapstructure:"dev_field_catalog"`
	QuirkCatalog    string `mapstructure:"quirk_catalog"`
}

func defaultProfileConfig() *profileConfig {
	home, _ := os.UserHomeDir()
	return &profileConfig{
		Workers: 4,
		DataDir: filepath.Join(home, ".trainload"),
	}
}

// loadConfig reads trainload.yaml from cfgFile (or the standard search
// path) and layers TRAINLOAD_-prefixed environment variables over it.
func loadConfig(cfgFile string) (*profileConfig, error) {
	cfg := defaultProfileConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("data_dir", cfg.DataDir)

	v.SetEnvPrefix("TRAINLOAD")
	v.AutomaticEnv()
	v.BindEnv("ftp_watts", "TRAINLOAD_FTP_WATTS")
	v.BindEnv("lthr_bpm", "TRAINLOAD_LTHR_BPM")
	v.BindEnv("threshold_pace_sec_per_m", "TRAINLOAD_THRESHOLD_PACE_SEC_PER_M")
	v.BindEnv("critical_swim_speed_sec_per_m", "TRAINLOAD_CSS_SEC_PER_M")
	v.BindEnv("workers", "TRAINLOAD_WORKERS")
	v.BindEnv("data_dir", "TRAINLOAD_DATA_DIR")
	v.BindEnv("dev_field_catalog", "TRAINLOAD_DEV_FIELD_CATALOG")
	v.BindEnv("quirk_catalog", "TRAINLOAD_QUIRK_CATALOG")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("trainload")
		v.AddConfigPath(".")
		v.AddConfigPath(cfg.DataDir)
		v.AddConfigPath("/etc/trainload")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
