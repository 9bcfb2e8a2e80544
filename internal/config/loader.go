package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/availability"
	"github.com/example/room-reservations/internal/logging"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreSheet    = "sheet"
	StorePostgres = "postgres"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort          int
	Store             string
	SQLiteDSN         string
	SheetPath         string
	PostgresDSN       string
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
	CookieSecure      bool
	Lock              string
	RedisAddr         string
	LoginRate         int
	LogLevel          slog.Level
	CatalogFile       string
	Catalog           Catalog
}

// Catalog lists the bookable rooms, the accepted companies and the calendar
// grid. Nil slices and a zero grid mean the built-in defaults.
type Catalog struct {
	Rooms     []application.Room
	Companies []string
	Grid      availability.Grid
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Every missing or invalid variable is
// reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		Store:        StoreMemory,
		SQLiteDSN:    "file:reservations.db",
		SheetPath:    "reservations.csv",
		SessionTTL:   application.DefaultSessionTTL,
		CookieSecure: true,
		Lock:         LockLocal,
		LoginRate:    10,
		LogLevel:     slog.LevelInfo,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := env("HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, key("HTTP_PORT"))
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(env("STORE")); store != "" {
		switch store {
		case StoreMemory, StoreSQLite, StoreSheet, StorePostgres:
			cfg.Store = store
		default:
			invalid = append(invalid, key("STORE"))
		}
	}

	if dsn := env("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if path := env("SHEET_PATH"); path != "" {
		cfg.SheetPath = path
	}
	cfg.PostgresDSN = env("POSTGRES_DSN")
	if cfg.Store == StorePostgres && cfg.PostgresDSN == "" {
		missing = append(missing, key("POSTGRES_DSN"))
	}

	cfg.AdminPassword = os.Getenv(key("ADMIN_PASSWORD"))
	cfg.AdminPasswordHash = env("ADMIN_PASSWORD_HASH")
	switch {
	case cfg.AdminPasswordHash != "":
		if err := application.CheckPasswordHash(cfg.AdminPasswordHash); err != nil {
			invalid = append(invalid, key("ADMIN_PASSWORD_HASH"))
		}
	case strings.TrimSpace(cfg.AdminPassword) == "":
		missing = append(missing, key("ADMIN_PASSWORD"))
	}

	if secret := env("SESSION_SECRET"); secret == "" {
		missing = append(missing, key("SESSION_SECRET"))
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := env("SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, key("SESSION_TTL"))
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if secureValue := env("COOKIE_SECURE"); secureValue != "" {
		secure, err := strconv.ParseBool(secureValue)
		if err != nil {
			invalid = append(invalid, key("COOKIE_SECURE"))
		} else {
			cfg.CookieSecure = secure
		}
	}

	if lockValue := strings.ToLower(env("LOCK")); lockValue != "" {
		switch lockValue {
		case LockLocal, LockRedis:
			cfg.Lock = lockValue
		default:
			invalid = append(invalid, key("LOCK"))
		}
	}
	cfg.RedisAddr = env("REDIS_ADDR")
	if cfg.Lock == LockRedis && cfg.RedisAddr == "" {
		missing = append(missing, key("REDIS_ADDR"))
	}

	if rateValue := env("LOGIN_RATE"); rateValue != "" {
		rate, err := strconv.Atoi(rateValue)
		if err != nil || rate < 0 {
			invalid = append(invalid, key("LOGIN_RATE"))
		} else {
			cfg.LoginRate = rate
		}
	}

	if levelValue := env("LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, key("LOG_LEVEL"))
		} else {
			cfg.LogLevel = level
		}
	}

	var catalogErr error
	if path := env("CATALOG_FILE"); path != "" {
		cfg.CatalogFile = path
		cfg.Catalog, catalogErr = LoadCatalogFile(path)
		if catalogErr != nil {
			invalid = append(invalid, key("CATALOG_FILE"))
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		err := fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
		if catalogErr != nil {
			err = errors.Join(err, catalogErr)
		}
		return Config{}, err
	}

	return cfg, nil
}

const envPrefix = "RESERVATIONS_"

func key(name string) string {
	return envPrefix + name
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(key(name)))
}

type catalogFile struct {
	Rooms []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"rooms"`
	Companies    []string `yaml:"companies"`
	WorkingHours *struct {
		StartHour       int `yaml:"start_hour"`
		EndHour         int `yaml:"end_hour"`
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"working_hours"`
}

// LoadCatalogFile reads a YAML room catalog:
//
//	rooms:
//	  - id: room-1
//	    name: Meeting Room 1
//	    description: Main conference room
//	companies: [Company A, Company B]
//	working_hours: {start_hour: 8, end_hour: 20, interval_minutes: 30}
//
// Omitted sections keep the defaults.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("config: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML room catalog. Unknown keys are rejected.
func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("config: parse catalog: %w", err)
	}

	var catalog Catalog
	if file.Rooms != nil {
		seen := make(map[string]struct{}, len(file.Rooms))
		catalog.Rooms = make([]application.Room, 0, len(file.Rooms))
		for i, r := range file.Rooms {
			id := strings.TrimSpace(r.ID)
			if id == "" {
				return Catalog{}, fmt.Errorf("config: catalog room %d has no id", i+1)
			}
			if _, dup := seen[id]; dup {
				return Catalog{}, fmt.Errorf("config: catalog room %q is listed twice", id)
			}
			seen[id] = struct{}{}
			name := strings.TrimSpace(r.Name)
			if name == "" {
				name = id
			}
			catalog.Rooms = append(catalog.Rooms, application.Room{ID: id, Name: name, Description: strings.TrimSpace(r.Description)})
		}
		if len(catalog.Rooms) == 0 {
			return Catalog{}, errors.New("config: catalog lists no rooms")
		}
	}

	if file.Companies != nil {
		catalog.Companies = make([]string, 0, len(file.Companies))
		for _, c := range file.Companies {
			if c = strings.TrimSpace(c); c != "" {
				catalog.Companies = append(catalog.Companies, c)
			}
		}
	}

	if wh := file.WorkingHours; wh != nil {
		grid := availability.Grid{StartHour: wh.StartHour, EndHour: wh.EndHour, IntervalMinutes: wh.IntervalMinutes}
		if len(grid.Slots()) == 0 {
			return Catalog{}, fmt.Errorf("config: invalid working hours %d-%d every %d minutes", wh.StartHour, wh.EndHour, wh.IntervalMinutes)
		}
		catalog.Grid = grid
	}

	return catalog, nil
}
