// Package config provides configuration management for csv2wiki.
//
// Configuration comes from three layers, later layers winning:
// built-in defaults (NewConfig), the YAML config file (.csv2wiki), and
// command line flags.
package config
