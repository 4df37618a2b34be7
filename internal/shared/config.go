package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/grasshide/LMS-Mixtape/internal/models"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Export  ExportConfig  `toml:"export"`
	Query   QueryConfig   `toml:"query"`
	Cover   CoverConfig   `toml:"cover"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// LibraryConfig locates the media server's database files.
type LibraryConfig struct {
	Dir string `toml:"dir"`
}

// ExportConfig contains export destinations and defaults.
type ExportConfig struct {
	Root        string `toml:"root"`
	SyncDir     string `toml:"sync_dir"`
	Format      string `toml:"format"`
	EmbedCovers bool   `toml:"embed_covers"`
	RenameFiles bool   `toml:"rename_files"`
	PUID        *int   `toml:"puid"`
	PGID        *int   `toml:"pgid"`
}

// QueryConfig holds default filter values for song selection.
type QueryConfig struct {
	Rating        int      `toml:"rating"`
	Limit         int      `toml:"limit"`
	Order         string   `toml:"order"`
	AlbumLimit    int      `toml:"album_limit"`
	DynPSVal      float64  `toml:"dyn_ps_val"`
	ExcludeGenres []string `toml:"exclude_genres"`
}

// CoverConfig controls cover transcoding for display.
type CoverConfig struct {
	MaxDimension int `toml:"max_dimension"`
	Quality      int `toml:"quality"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string  `toml:"host"`
	Port           int     `toml:"port"`
	CoverRateLimit float64 `toml:"cover_rate_limit"`
	CoverBurst     int     `toml:"cover_burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Identity returns the configured owner/group, or nil when either id is unset.
func (c ExportConfig) Identity() *models.Identity {
	if c.PUID == nil || c.PGID == nil {
		return nil
	}
	return &models.Identity{UID: *c.PUID, GID: *c.PGID}
}

// Options converts the configured defaults into [models.QueryOptions].
func (c QueryConfig) Options() (models.QueryOptions, error) {
	order, err := models.ParseOrder(c.Order)
	if err != nil {
		return models.QueryOptions{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	opts := models.QueryOptions{
		MinRating:     c.Rating,
		Limit:         c.Limit,
		ExcludeGenres: c.ExcludeGenres,
		AlbumLimit:    c.AlbumLimit,
		Order:         order,
	}
	if c.DynPSVal != 0 {
		v := c.DynPSVal
		opts.MinDynPSVal = &v
	}
	return opts, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the config.
//
// A .env file in the working directory is loaded first if present; variables
// already set in the process environment win over it.
func ApplyEnv(config *Config) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if v, ok := os.LookupEnv("MIXTAPE_LIBRARY_DIR"); ok && v != "" {
		config.Library.Dir = v
	}
	if v, ok := os.LookupEnv("MIXTAPE_EXPORT_DIR"); ok && v != "" {
		config.Export.Root = v
	}
	if v, ok := os.LookupEnv("MIXTAPE_SYNC_DIR"); ok && v != "" {
		config.Export.SyncDir = v
	}

	for key, target := range map[string]**int{"PUID": &config.Export.PUID, "PGID": &config.Export.PGID} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not numeric", ErrInvalidConfig, key, v)
		}
		*target = &id
	}

	return nil
}
