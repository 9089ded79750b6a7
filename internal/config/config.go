package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/joho/godotenv"
)

type Server struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Debug bool   `toml:"debug_mode"`
}

type Storage struct {
	SqliteFile string `toml:"sqlite_file"`
}

type Classic struct {
	KBase           float64 `toml:"k_base"`
	BonusFactor     float64 `toml:"bonus_factor"`
	MarginThreshold int     `toml:"margin_threshold"`
}

type Proportional struct {
	KBase            float64 `toml:"k_base"`
	BonusFactor      float64 `toml:"bonus_factor"`
	SaturationMargin int     `toml:"saturation_margin"`
}

type Ranking struct {
	Mode         string       `toml:"mode"`
	Classic      Classic      `toml:"classic"`
	Proportional Proportional `toml:"proportional"`
}

type Scheduler struct {
	Enabled       bool          `toml:"enabled"`
	Interval      time.Duration `toml:"interval"`
	MaxSessionAge time.Duration `toml:"max_session_age"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Server    Server    `toml:"server"`
	Storage   Storage   `toml:"storage"`
	Ranking   Ranking   `toml:"ranking"`
	Scheduler Scheduler `toml:"scheduler"`
	Log       Log       `toml:"log"`
}

func Default() Config {
	d := domain.DefaultRankingSettings()
	return Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Storage: Storage{
			SqliteFile: "doubles.sqlite",
		},
		Ranking: Ranking{
			Mode: string(d.Mode),
			Classic: Classic{
				KBase:           d.Classic.KBase,
				BonusFactor:     d.Classic.BonusFactor,
				MarginThreshold: d.Classic.MarginThreshold,
			},
			Proportional: Proportional{
				KBase:            d.Proportional.KBase,
				BonusFactor:      d.Proportional.BonusFactor,
				SaturationMargin: d.Proportional.SaturationMargin,
			},
		},
		Scheduler: Scheduler{
			Enabled:       true,
			Interval:      time.Hour,
			MaxSessionAge: 24 * time.Hour,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// New reads the TOML file at path over the defaults, then applies
// environment overrides. A .env file in the working directory is loaded
// first if present. An empty path skips the file.
func New(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Ranking.Settings(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	if v := os.Getenv("DOUBLES_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("DOUBLES_PORT"); v != "" {
		port, perr := strconv.Atoi(v)
		if perr != nil {
			err = errors.Join(err, fmt.Errorf("DOUBLES_PORT: %w", perr))
		} else {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DOUBLES_SQLITE_FILE"); v != "" {
		c.Storage.SqliteFile = v
	}
	if v := os.Getenv("DOUBLES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DOUBLES_RANKING_MODE"); v != "" {
		c.Ranking.Mode = v
	}
	return err
}

// Settings converts the ranking section into a validated snapshot.
func (r Ranking) Settings() (domain.RankingSettings, error) {
	mode, err := domain.ParseRankingMode(r.Mode)
	if err != nil {
		return domain.RankingSettings{}, err
	}
	s := domain.RankingSettings{
		Mode: mode,
		Classic: domain.ClassicParams{
			KBase:           r.Classic.KBase,
			BonusFactor:     r.Classic.BonusFactor,
			MarginThreshold: r.Classic.MarginThreshold,
		},
		Proportional: domain.ProportionalParams{
			KBase:            r.Proportional.KBase,
			BonusFactor:      r.Proportional.BonusFactor,
			SaturationMargin: r.Proportional.SaturationMargin,
		},
	}
	if err := s.Validate(); err != nil {
		return domain.RankingSettings{}, err
	}
	return s, nil
}
