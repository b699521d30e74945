package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// licenseAllowlist is the on-disk format:
//
//	licenses:
//	  - PSY-2024-0001
//	  - PSY-2024-0002
type licenseAllowlist struct {
	Licenses []string `yaml:"licenses"`
}

// LicenseSeeder persists verified license numbers.
type LicenseSeeder interface {
	SeedVerifiedLicenses(ctx context.Context, licenses []string) (int64, error)
}

// LoadLicenseAllowlist reads the YAML allowlist, trimming blanks and duplicates.
func LoadLicenseAllowlist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLicenseAllowlist(data)
}

func ParseLicenseAllowlist(data []byte) ([]string, error) {
	var file licenseAllowlist
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse license allowlist: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Licenses))
	out := make([]string, 0, len(file.Licenses))
	for _, l := range file.Licenses {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}

// SeedLicenses loads the allowlist at path into the verified set. A missing file is
// logged and skipped so existing verified licenses stay usable.
func SeedLicenses(ctx context.Context, seeder LicenseSeeder, path string, log logrus.FieldLogger) (int64, error) {
	licenses, err := LoadLicenseAllowlist(path)
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("path", path).Warn("license allowlist not found, skipping seed")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	added, err := seeder.SeedVerifiedLicenses(ctx, licenses)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"path": path, "listed": len(licenses), "added": added}).Info("verified licenses seeded")
	return added, nil
}
