package initramfs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Package is an installed package as recorded in the local database.
type Package struct {
	Name    string
	Version string
	// Files lists the package manifest in recorded order.
	// Paths are relative to "/"; directories carry a trailing slash.
	Files []string
}

// PackageDB looks up installed packages.
// Implementations return an error wrapping [ErrPackageNotFound] for
// packages that are not installed.
type PackageDB interface {
	Package(name string) (*Package, error)
}

// LocalDB is a read-only view of the pacman local database
// (<dbpath>/local/<name>-<pkgver>-<pkgrel>/{desc,files}).
type LocalDB struct {
	dir string
}

// OpenLocalDB opens the local database under dbPath (e.g., /var/lib/pacman).
// The error wraps [ErrDatabase] when the database is missing or unreadable.
func OpenLocalDB(dbPath string) (*LocalDB, error) {
	dir := filepath.Join(dbPath, "local")

	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDatabase, dir)
	}

	// Databases created by libalpm carry a schema version; an unparseable one
	// means the database has been tampered with or truncated.
	data, err := os.ReadFile(filepath.Join(dir, "ALPM_DB_VERSION"))
	switch {
	case err == nil:
		if _, err := strconv.Atoi(strings.TrimSpace(string(data))); err != nil {
			return nil, fmt.Errorf("%w: invalid ALPM_DB_VERSION: %w", ErrDatabase, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	return &LocalDB{dir: dir}, nil
}

// Package returns the installed package called name.
func (db *LocalDB) Package(name string) (*Package, error) {
	entries, err := os.ReadDir(db.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabase, err)
	}

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), name+"-") {
			continue
		}
		entry := filepath.Join(db.dir, e.Name())

		desc, err := readSections(filepath.Join(entry, "desc"))
		if err != nil {
			continue
		}
		if first(desc["NAME"]) != name {
			continue
		}

		files, err := readSections(filepath.Join(entry, "files"))
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read file list of %s: %w", name, err)
		}

		return &Package{
			Name:    name,
			Version: first(desc["VERSION"]),
			Files:   files["FILES"],
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", name, ErrPackageNotFound)
}

// readSections reads a libalpm database file.
func readSections(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseSections(f)
}

// parseSections parses "%KEY%" headers each followed by one value per line,
// terminated by an empty line.
func parseSections(r io.Reader) (map[string][]string, error) {
	sections := make(map[string][]string)
	scanner := bufio.NewScanner(r)

	key := ""
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			key = ""
			continue
		}

		if key == "" {
			if len(line) > 2 && strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%") {
				key = line[1 : len(line)-1]
				if _, ok := sections[key]; !ok {
					sections[key] = []string{}
				}
			}
			continue
		}

		sections[key] = append(sections[key], line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

var _ PackageDB = (*LocalDB)(nil)
