// Package manifest handles metamodel.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a directory.
const FileName = "metamodel.toml"

// Manifest represents a metamodel.toml configuration.
type Manifest struct {
	Runtime  Runtime   `toml:"runtime"`
	GC       GC        `toml:"gc"`
	Log      Log       `toml:"log"`
	Snapshot Snapshot  `toml:"snapshot"`
	Types    []TypeDef `toml:"types"`

	// Dir is the directory containing the metamodel.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime selects the registered representations.
type Runtime struct {
	Name string `toml:"name"`
	// Representations restricts the registry; empty means all built-ins.
	Representations []string `toml:"representations"`
}

// GC configures the collector.
type GC struct {
	Interval   string `toml:"interval"`
	Background bool   `toml:"background"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Snapshot configures heap snapshot output.
type Snapshot struct {
	Output string `toml:"output"`
	// Archive is an optional SQLite database that keeps every snapshot.
	Archive string `toml:"archive"`
}

// TypeDef declares a type to define after bootstrap.
type TypeDef struct {
	Name       string   `toml:"name"`
	REPR       string   `toml:"repr"`
	Attributes []string `toml:"attributes"`
	Methods    []string `toml:"methods"`
}

// Defaults applied by Parse.
const (
	DefaultName       = "metamodel"
	DefaultGCInterval = "30s"
	DefaultSnapshot   = "heap.cbor"
)

// Load parses the metamodel.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes and validates manifest data, then applies defaults.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Default returns the manifest used when no file is found.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Runtime.Name == "" {
		m.Runtime.Name = DefaultName
	}
	if m.GC.Interval == "" {
		m.GC.Interval = DefaultGCInterval
	}
	if m.Snapshot.Output == "" {
		m.Snapshot.Output = DefaultSnapshot
	}
}

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	if _, err := m.GCInterval(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(m.Types))
	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("types[%d]: missing name", i)
		}
		if t.REPR == "" {
			return fmt.Errorf("type %s: missing repr", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("type %s: declared twice", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// GCInterval returns the parsed collection interval.
func (m *Manifest) GCInterval() (time.Duration, error) {
	d, err := time.ParseDuration(m.GC.Interval)
	if err != nil {
		return 0, fmt.Errorf("gc.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("gc.interval: must be positive, got %s", m.GC.Interval)
	}
	return d, nil
}

// FindAndLoad walks up from startDir to find a metamodel.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SnapshotPath returns the snapshot output path, resolved against the
// manifest directory when relative.
func (m *Manifest) SnapshotPath() string {
	return m.resolve(m.Snapshot.Output)
}

// ArchivePath returns the snapshot archive path, or "" when archiving is
// off.
func (m *Manifest) ArchivePath() string {
	return m.resolve(m.Snapshot.Archive)
}

// LogPath returns the log file path, or nil to log to stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	p := m.resolve(m.Log.File)
	return &p
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
