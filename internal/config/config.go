package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALSTORE_"

var ErrInvalidConfig = errors.New("invalid configuration")

type Application struct {
	Server Server `koanf:"server"`
	// Active is the calendar selected at start-up. Empty leaves none active.
	Active    string     `koanf:"active"`
	Calendars []Calendar `koanf:"calendars"`
}

type Server struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`
	IdleTimeout  time.Duration `koanf:"idletimeout"`
}

// Calendar is a calendar created at start-up. Timezone is an IANA zone name.
type Calendar struct {
	Name     string `koanf:"name"`
	Timezone string `koanf:"timezone"`
}

func Default() Application {
	return Application{
		Server: Server{
			Port:         8181,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Active: "default",
		Calendars: []Calendar{
			{Name: "default", Timezone: "UTC"},
		},
	}
}

// Load layers the defaults, the YAML file at path (optional) and CALSTORE_
// environment variables, in that order, then validates the result.
// CALSTORE_SERVER_PORT sets server.port.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Default(), "koanf"), nil)
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
	if err := app.Validate(); err != nil {
		return Application{}, err
	}

	log.Debugf("Configured %d calendar(s), active %q", len(app.Calendars), app.Active)
	return app, nil
}

// Validate checks the port, that every calendar has a name and a zone, and
// that the active calendar is one of them. Zone names are resolved later by
// the calendar manager.
func (a Application) Validate() error {
	if a.Server.Port < 1 || a.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, a.Server.Port)
	}
	activeFound := a.Active == ""
	for i, c := range a.Calendars {
		if c.Name == "" {
			return fmt.Errorf("%w: calendar #%d has no name", ErrInvalidConfig, i+1)
		}
		if c.Timezone == "" {
			return fmt.Errorf("%w: calendar %q has no timezone", ErrInvalidConfig, c.Name)
		}
		if c.Name == a.Active {
			activeFound = true
		}
	}
	if !activeFound {
		return fmt.Errorf("%w: active calendar %q is not configured", ErrInvalidConfig, a.Active)
	}
	return nil
}
