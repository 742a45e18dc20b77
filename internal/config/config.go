package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
	Timeline Timeline `koanf:"timeline"`
	Poll     Poll     `koanf:"poll"`
	Toasts   Toasts   `koanf:"toasts"`
	Feeds    []Feed   `koanf:"feeds"`
	// Timezone overrides the system zone used for day boundaries,
	// e.g. "Europe/Warsaw".
	Timezone string `koanf:"timezone"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Timeline struct {
	HourHeight float64 `koanf:"hourheight"`
}

type Poll struct {
	IntervalSeconds int `koanf:"intervalseconds"`
}

type Toasts struct {
	Capacity  int `koanf:"capacity"`
	TtlMillis int `koanf:"ttlmillis"`
}

// Feed is a read-only ICS subscription shown next to the Google calendars.
type Feed struct {
	Name string `koanf:"name"`
	Url  string `koanf:"url"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend/dist",
		},
		Database: Database{
			Path: "daypanel.db",
		},
		Timeline: Timeline{
			HourHeight: 48,
		},
		Poll: Poll{
			IntervalSeconds: 30,
		},
		Toasts: Toasts{
			Capacity:  3,
			TtlMillis: 3000,
		},
	}, "koanf"), nil)
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
		Prefix: "DAYPANEL_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "DAYPANEL_")), "_", ".")
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
