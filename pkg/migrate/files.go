package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var migrationFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9]+(?:_[a-z0-9]+)*)\.sql$`)

// The same files run against sqlite and postgres, so statements that only
// one of them accepts are rejected.
var dialectOnlyTokens = []string{"AUTOINCREMENT", "SERIAL", "JSONB", "BYTEA", "NOW()", "PRAGMA", "::"}

// Scaffold writes an empty migration for the key-value store into dir. The
// version is the current UTC time, bumped past the newest file already in dir
// so goose keeps applying them in creation order.
func Scaffold(dir, name string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	version := time.Now().UTC()
	latest, err := latestVersion(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	if !version.After(latest) {
		version = latest.Add(time.Second)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), slug))
	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s: keep statements portable between sqlite and postgres (kv_entries)
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %s
-- +goose StatementEnd
`, slug, slug)

	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", fullpath, err)
	}
	return fullpath, nil
}

// LintDir checks the migrations in a directory on disk.
func LintDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("dir is required")
	}
	return lint(os.DirFS(dir), ".")
}

// LintEmbedded checks the migrations compiled into the binary.
func LintEmbedded() error {
	return lint(embedded, embeddedDir)
}

func lint(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("migration %q must be named YYYYMMDDHHMMSS_name.sql", name)
		}
		if _, err := time.Parse(versionLayout, match[1]); err != nil {
			return fmt.Errorf("migration %q has an invalid timestamp", name)
		}
		if prev, ok := versions[match[1]]; ok {
			return fmt.Errorf("migrations %q and %q share version %s", prev, name, match[1])
		}
		versions[match[1]] = name

		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := lintBody(name, string(raw)); err != nil {
			return err
		}
	}
	return nil
}

func lintBody(name, body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q has no Up section", name)
	case down < 0:
		return fmt.Errorf("migration %q has no Down section", name)
	case down < up:
		return fmt.Errorf("migration %q declares Down before Up", name)
	}
	if strings.Count(body, "-- +goose StatementBegin") != strings.Count(body, "-- +goose StatementEnd") {
		return fmt.Errorf("migration %q has unbalanced StatementBegin/StatementEnd", name)
	}

	for _, line := range strings.Split(body, "\n") {
		statement := strings.ToUpper(strings.TrimSpace(line))
		if statement == "" || strings.HasPrefix(statement, "--") {
			continue
		}
		for _, token := range dialectOnlyTokens {
			if strings.Contains(statement, token) {
				return fmt.Errorf("migration %q uses %s, which is not portable between sqlite and postgres", name, token)
			}
		}
	}
	return nil
}

func latestVersion(fsys fs.FS) (time.Time, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return time.Time{}, fmt.Errorf("read migrations: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if match := migrationFileRe.FindStringSubmatch(entry.Name()); match != nil {
			versions = append(versions, match[1])
		}
	}
	if len(versions) == 0 {
		return time.Time{}, nil
	}
	sort.Strings(versions)
	latest, err := time.Parse(versionLayout, versions[len(versions)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse version %s: %w", versions[len(versions)-1], err)
	}
	return latest, nil
}

func slugify(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case b.Len() > 0 && !underscore:
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// parseVersion validates a -version flag value.
func parseVersion(raw string) (int64, error) {
	if _, err := time.Parse(versionLayout, raw); err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return strconv.ParseInt(raw, 10, 64)
}
