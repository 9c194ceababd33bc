// Package export dumps the platform and user collections to local report
// files and optionally uploads them to S3-compatible storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/service"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// PlatformLister fetches the platform collection.
type PlatformLister interface {
	List(ctx context.Context) ([]service.Platform, error)
}

// UserLister fetches the user collection.
type UserLister interface {
	List(ctx context.Context, filters *service.UserFilters) (*service.UserList, error)
}

// Report is the exported snapshot of the auth service's admin data.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Platforms   []service.Platform `json:"platforms"`
	Users       []service.User     `json:"users"`
	TotalUsers  int                `json:"totalUsers"`
}

// Exporter fetches both collections and writes a report directory.
type Exporter struct {
	log       logrus.FieldLogger
	platforms PlatformLister
	users     UserLister
	dir       string
}

// NewExporter creates an Exporter writing under dir.
func NewExporter(
	log logrus.FieldLogger,
	platforms PlatformLister,
	users UserLister,
	dir string,
) *Exporter {
	return &Exporter{
		log:       log.WithField("component", "export"),
		platforms: platforms,
		users:     users,
		dir:       dir,
	}
}

// Run fetches platforms and users concurrently, writes the report files
// into a timestamped directory, and returns its path.
func (e *Exporter) Run(ctx context.Context) (string, error) {
	report := Report{GeneratedAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		platforms, err := e.platforms.List(gctx)
		if err != nil {
			return fmt.Errorf("fetching platforms: %w", err)
		}

		report.Platforms = platforms

		return nil
	})

	g.Go(func() error {
		list, err := e.users.List(gctx, nil)
		if err != nil {
			return fmt.Errorf("fetching users: %w", err)
		}

		report.Users = list.Items
		report.TotalUsers = list.Total

		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}

	outDir := filepath.Join(
		e.dir, report.GeneratedAt.Format("20060102-150405"),
	)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	files := map[string]any{
		"report.json":    report,
		"platforms.json": report.Platforms,
		"users.json":     report.Users,
	}

	for name, payload := range files {
		if err := writeJSON(filepath.Join(outDir, name), payload); err != nil {
			return "", err
		}
	}

	if err := e.writeManifest(outDir, &report); err != nil {
		return "", err
	}

	e.log.WithField("dir", outDir).
		WithField("platforms", len(report.Platforms)).
		WithField("users", len(report.Users)).
		Info("Export completed")

	return outDir, nil
}

// ManifestName is the manifest file written into every export directory.
const ManifestName = "manifest.yaml"

// Manifest describes an export directory's contents. It is the authority
// on which files belong to the export; the uploader ships exactly this set.
type Manifest struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Platforms   int       `yaml:"platforms"`
	Users       int       `yaml:"users"`
	TotalUsers  int       `yaml:"total_users"`
	Files       []string  `yaml:"files"`
}

// ReadManifest loads the manifest of an export directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	return &m, nil
}

func (e *Exporter) writeManifest(outDir string, report *Report) error {
	m := Manifest{
		GeneratedAt: report.GeneratedAt,
		Platforms:   len(report.Platforms),
		Users:       len(report.Users),
		TotalUsers:  report.TotalUsers,
		Files:       []string{"report.json", "platforms.json", "users.json"},
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	path := filepath.Join(outDir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	return nil
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return nil
}
