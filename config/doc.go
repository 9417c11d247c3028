// Package config loads and validates the YAML settings file shared by the
// scrape, mirror, and ask commands. Every credential and endpoint is carried
// in an explicit Config value handed to components at construction; nothing
// reads ambient globals.
package config
