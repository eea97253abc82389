// Package config loads typed configuration structs from environment
// variables. Fields are declared with `env` tags and `envDefault` values;
// a .env file in the working directory is read once per process as a
// convenience for local development.
//
//	type Settings struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var s Settings
//	if err := config.Load(&s); err != nil { ... }
//
// Unlike a registry-based loader there is no process-wide cache: the
// composition root loads each config exactly once and passes it down
// through constructors.
package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("config.nil_pointer")

	// ErrParsing wraps env tag parsing failures.
	ErrParsing = errors.New("config.parsing_failed")
)

var loadDotenv sync.Once

// Load populates v from the environment. A missing .env file is not an
// error; a malformed tag or a failed required variable is.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	loadDotenv.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsing, err)
	}
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}
