package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Drivers lists the dialects that keep their own folder under migrations/.
// Every version must exist for each of them.
var Drivers = []string{"postgres", "mysql"}

const versionWidth = 6

const migrationUpTemplate = `-- {{.Version}} {{.Name}} ({{.Driver}})
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const migrationDownTemplate = `-- {{.Version}} {{.Name}} ({{.Driver}}) rollback
-- Created: {{.Timestamp}}

`

// MigrationFile is one dialect's up/down pair of a version
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Driver      string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Migration is a version as found on disk, with the dialects that carry it
type Migration struct {
	Version uint64
	Name    string
	Drivers []string
}

// Missing returns the dialects that lack this version
func (m Migration) Missing() []string {
	have := make(map[string]bool, len(m.Drivers))
	for _, d := range m.Drivers {
		have[d] = true
	}
	var missing []string
	for _, d := range Drivers {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// CreateMigration writes an empty up/down pair for every dialect under the
// next free sequence number
func CreateMigration(migrationsDir, name, description string) ([]MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	existing, err := ListMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}
	var next uint64 = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}
	version := fmt.Sprintf("%0*d", versionWidth, next)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	files := make([]MigrationFile, 0, len(Drivers))
	for _, driver := range Drivers {
		dir := filepath.Join(migrationsDir, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}
		base := version + "_" + slug
		mf := MigrationFile{
			Version:     version,
			Name:        name,
			Description: description,
			Driver:      driver,
			Timestamp:   timestamp,
			UpPath:      filepath.Join(dir, base+".up.sql"),
			DownPath:    filepath.Join(dir, base+".down.sql"),
		}
		if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
			removeFiles(files)
			return nil, fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			removeFiles(files)
			return nil, fmt.Errorf("failed to create down migration: %w", err)
		}
		files = append(files, mf)
	}
	return files, nil
}

func removeFiles(files []MigrationFile) {
	for _, f := range files {
		_ = os.Remove(f.UpPath)
		_ = os.Remove(f.DownPath)
	}
}

func createMigrationFile(path, tmplContent string, data MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName lowercases a name and folds separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns every version found in any dialect folder, in order
func ListMigrations(migrationsDir string) ([]Migration, error) {
	byVersion := make(map[uint64]*Migration)
	for _, driver := range Drivers {
		entries, err := os.ReadDir(filepath.Join(migrationsDir, driver))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read migrations directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
				continue
			}
			base := strings.TrimSuffix(entry.Name(), ".up.sql")
			prefix, rest, ok := strings.Cut(base, "_")
			if !ok {
				continue
			}
			version, err := strconv.ParseUint(prefix, 10, 64)
			if err != nil {
				continue
			}
			m, found := byVersion[version]
			if !found {
				m = &Migration{Version: version, Name: rest}
				byVersion[version] = m
			}
			m.Drivers = append(m.Drivers, driver)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
