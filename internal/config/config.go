package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "EVENTCAL_"

type Application struct {
	Host         string       `koanf:"host"`
	Listen       string       `koanf:"listen"`
	Frontend     Frontend     `koanf:"frontend"`
	Calendar     Calendar     `koanf:"calendar"`
	Passkey      Passkey      `koanf:"passkey"`
	Storage      Storage      `koanf:"storage"`
	Google       Google       `koanf:"google"`
	Integrations Integrations `koanf:"integrations"`
	Database     Database     `koanf:"db"`
	Redis        Redis        `koanf:"redis"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Calendar struct {
	Timezone  string `koanf:"timezone"`
	WeekStart string `koanf:"weekstart"`
	// VisibleHours and WorkingHours use the "8-18" notation.
	VisibleHours string `koanf:"visiblehours"`
	WorkingHours string `koanf:"workinghours"`
}

type Passkey struct {
	Enabled bool   `koanf:"enabled"`
	Code    string `koanf:"code"`
}

type Storage struct {
	// Driver is one of postgres, redis or memory.
	Driver string `koanf:"driver"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Integrations struct {
	SyncCron string `koanf:"synccron"`
	CacheTTL string `koanf:"cachettl"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func Defaults() Application {
	return Application{
		Host:   "http://localhost:8181",
		Listen: ":8181",
		Frontend: Frontend{
			Enabled: false,
		},
		Calendar: Calendar{
			Timezone:     "UTC",
			WeekStart:    "sunday",
			VisibleHours: "0-24",
			WorkingHours: "8-18",
		},
		Passkey: Passkey{
			Enabled: true,
			Code:    "0000",
		},
		Storage: Storage{
			Driver: "postgres",
		},
		Integrations: Integrations{
			SyncCron: "*/15 * * * *",
			CacheTTL: "15m",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "eventcal",
			Pass:   "",
			Name:   "eventcal",
			Schema: "eventcal",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
	}
}

// Load reads the configuration from struct defaults, then the YAML file at path, then
// EVENTCAL_* environment variables. A .env file in the working directory is loaded first.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
