package registry

import (
	"os"
	"strconv"
	"strings"
)

// MaxRegistries is the largest numbered slot the multi-mode env loader
// will scan.
const MaxRegistries = 8

// Config is the immutable description of one fleet member. It never
// changes after LoadFleet returns.
type Config struct {
	Name        string
	URL         string
	User        string
	Password    string
	Readonly    bool
	Description string
}

// LoadFleet loads the registry fleet from the process environment following
// numbered multi-mode slots win over the single-mode fallback: when
// any valid (NAME_i, URL_i) pair exists, single-mode variables are ignored
// entirely.
func LoadFleet() ([]Config, string) {
	if multi, defaultName := loadMulti(); len(multi) > 0 {
		return multi, defaultName
	}
	if single, ok := loadSingle(); ok {
		return []Config{single}, single.Name
	}
	return nil, ""
}

func loadMulti() ([]Config, string) {
	var cfgs []Config
	defaultName := ""
	for i := 1; i <= MaxRegistries; i++ {
		suffix := "_" + strconv.Itoa(i)
		name := os.Getenv("SCHEMA_REGISTRY_NAME" + suffix)
		url := os.Getenv("SCHEMA_REGISTRY_URL" + suffix)
		if name == "" || url == "" {
			continue
		}
		cfg := Config{
			Name:     name,
			URL:      url,
			User:     os.Getenv("SCHEMA_REGISTRY_USER" + suffix),
			Password: os.Getenv("SCHEMA_REGISTRY_PASSWORD" + suffix),
			Readonly: truthy(os.Getenv("READONLY" + suffix)),
		}
		cfgs = append(cfgs, cfg)
		if defaultName == "" {
			defaultName = name
		}
	}
	return cfgs, defaultName
}

func loadSingle() (Config, bool) {
	url := os.Getenv("SCHEMA_REGISTRY_URL")
	if url == "" {
		return Config{}, false
	}
	return Config{
		Name:     "default",
		URL:      url,
		User:     os.Getenv("SCHEMA_REGISTRY_USER"),
		Password: os.Getenv("SCHEMA_REGISTRY_PASSWORD"),
		Readonly: truthy(os.Getenv("READONLY")),
	}, true
}

// truthy parses the env-var boolean convention:
// true|1|yes|on (case-insensitive).
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
