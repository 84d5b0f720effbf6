// Package config loads, validates and saves the YAML settings file.
//
// Secrets (obs-websocket password, Twitch channel and token) may also come
// from the process environment or a dotenv file, which win over the YAML.
package config
