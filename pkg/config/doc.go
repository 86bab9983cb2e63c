// Package config loads typed configuration structs from environment
// variables, wrapping github.com/caarlos0/env for struct-tag parsing and
// github.com/joho/godotenv for local .env fallback.
//
// Every component of the engine declares its own Config struct with `env`
// tags (see pkg/pg, pkg/redis, pkg/onesignal, pkg/dispatch) and loads it
// through this package once at startup.
package config
