// Package config provides configuration structures and utilities for
// sslreport. It defines the conversion options (inputs, output format,
// cell formatting, policy thresholds, history storage) and the optional
// per-host YAML configuration file.
package config
