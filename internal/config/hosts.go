package config

import "strings"

// HostConfig holds per-host output and policy settings.
// Zero values mean "inherit".
type HostConfig struct {
	// DateFormat overrides the strftime pattern for certificate dates.
	DateFormat string `yaml:"date_format,omitempty"`

	// NullValue overrides the placeholder for unreported fields.
	// It is a pointer so that an explicit empty string can be configured.
	NullValue *string `yaml:"null_value,omitempty"`

	// MinCipherBits overrides the weak cipher threshold.
	// A negative value disables the check.
	MinCipherBits int `yaml:"min_cipher_bits,omitempty"`

	// MaxValidityDays overrides the certificate lifetime threshold.
	// A negative value disables the check.
	MaxValidityDays int `yaml:"max_validity_days,omitempty"`

	// Ignore drops the host's records from the output.
	Ignore bool `yaml:"ignore,omitempty"`
}

// File represents the structure of the .sslreport configuration file.
type File struct {
	// Defaults applies to every host unless overridden.
	Defaults HostConfig `yaml:"defaults,omitempty"`

	// Hosts maps a host, as written in the sslscan report, to its overrides.
	// Keys are matched case-insensitively; "*.example.com" matches subdomains.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`
}

// HostEntry returns the entry written for host, without the defaults.
// Keys match exactly, then case-insensitively, then as "*.suffix" wildcards
// where the longest matching suffix wins.
func (cf *File) HostEntry(host string) (HostConfig, bool) {
	if hc, ok := cf.Hosts[host]; ok {
		return hc, true
	}
	for k, v := range cf.Hosts {
		if strings.EqualFold(k, host) {
			return v, true
		}
	}

	var (
		best    HostConfig
		bestLen int
	)
	lower := strings.ToLower(host)
	for k, v := range cf.Hosts {
		suffix, ok := strings.CutPrefix(strings.ToLower(k), "*")
		if !ok || !strings.HasPrefix(suffix, ".") {
			continue
		}
		if strings.HasSuffix(lower, suffix) && len(suffix) > bestLen {
			best, bestLen = v, len(suffix)
		}
	}
	return best, bestLen > 0
}

// GetHostConfig returns the configuration for a host.
// It merges the host-specific entry with the defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := cf.Defaults

	hc, ok := cf.HostEntry(host)
	if !ok {
		return result
	}

	if hc.DateFormat != "" {
		result.DateFormat = hc.DateFormat
	}
	if hc.NullValue != nil {
		result.NullValue = hc.NullValue
	}
	if hc.MinCipherBits != 0 {
		result.MinCipherBits = hc.MinCipherBits
	}
	if hc.MaxValidityDays != 0 {
		result.MaxValidityDays = hc.MaxValidityDays
	}
	if hc.Ignore {
		result.Ignore = true
	}
	return result
}
