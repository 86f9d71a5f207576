// Package config defines the settings of the gradual daemon and provides
// helpers to load, validate and save them in YAML format.
//
// Validate fills in defaults: the control address, the SQLite path, the
// 40 second poll interval and the collaborator timeout.
package config
