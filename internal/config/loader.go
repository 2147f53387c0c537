package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/recipescout/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".recipescout.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers decide whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cf := NewFile()
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, err
	}

	// yaml.v3 replaces maps that appear in the document, and leaves nil ones alone
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	if cf.KnownURLs == nil {
		cf.KnownURLs = make(map[string][]string)
	}

	normalized := make(map[string]SiteConfig, len(cf.Sites))
	for k, v := range cf.Sites {
		normalized[NormalizeDomain(k)] = v
	}
	cf.Sites = normalized

	return cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .recipescout.yaml in the current directory
// 3. Look for .recipescout.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// LoadSiteList reads a site list file.
// Two formats are accepted: a YAML sequence of {name, domain} mappings, or
// plain text with one "domain" or "name,domain" per line ('#' starts a comment).
// Every failure wraps ErrSiteListUnreadable, and an empty list returns ErrNoSites.
func LoadSiteList(path string) ([]model.Site, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided site list path is intentional
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSiteListUnreadable, err)
	}

	sites, err := ParseSiteList(data)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, ErrNoSites
	}
	return sites, nil
}

// ParseSiteList parses site list content in either supported format.
func ParseSiteList(data []byte) ([]model.Site, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("-")) {
		var sites []model.Site
		if err := yaml.Unmarshal(trimmed, &sites); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSiteListUnreadable, err)
		}
		return normalizeSites(sites), nil
	}

	var sites []model.Site
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, domain, found := strings.Cut(line, ",")
		if !found {
			domain = name
			name = ""
		}
		sites = append(sites, model.Site{Name: strings.TrimSpace(name), Domain: strings.TrimSpace(domain)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSiteListUnreadable, err)
	}
	return normalizeSites(sites), nil
}

// normalizeSites drops entries without a domain, normalizes domains,
// removes duplicates, and fills missing names with the domain.
// An explicit http:// scheme is kept so plain-HTTP sites stay reachable.
func normalizeSites(sites []model.Site) []model.Site {
	seen := make(map[string]struct{}, len(sites))
	out := make([]model.Site, 0, len(sites))
	for _, s := range sites {
		d := NormalizeDomain(s.Domain)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		if s.Name == "" {
			s.Name = d
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s.Domain)), "http://") {
			s.Domain = "http://" + d
		} else {
			s.Domain = d
		}
		out = append(out, s)
	}
	return out
}
