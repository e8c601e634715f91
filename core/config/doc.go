// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/hyperkit/core/config"
//
//	var cfg hyperkit.Config
//	config.MustLoad(&cfg)
//
//	app := hyperkit.New(hyperkit.WithConfig(cfg))
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var a, b hyperkit.Config
//	config.Load(&a) // parses the environment
//	config.Load(&b) // copies the cached value
//
// Different types are cached independently. Reset clears the cache.
package config
