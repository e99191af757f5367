package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config keys.
const (
	KeyCacheDir      = "cache-dir"
	KeyAlgorithm     = "algorithm"
	KeyMinSimilarity = "min-similarity"
	KeyMaxShift      = "max-shift"
)

// Environment variable fallbacks.
const (
	EnvCacheDir      = "REPRISE_CACHE_DIR"
	EnvAlgorithm     = "REPRISE_ALGORITHM"
	EnvMinSimilarity = "REPRISE_MIN_SIMILARITY"
	EnvMaxShift      = "REPRISE_MAX_SHIFT"
)

// Keys lists the supported keys in display order.
var Keys = []string{KeyCacheDir, KeyAlgorithm, KeyMinSimilarity, KeyMaxShift}

var (
	// ErrUnknownKey indicates a key that is not in Keys.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a value that cannot be parsed for its key.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrNotDirectory indicates the cache path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotWritable indicates the cache directory cannot be written to.
	ErrNotWritable = errors.New("directory is not writable")
)

// Config holds user configuration loaded from ~/.config/go-reprise/config.
// Zero fields mean "not set".
type Config struct {
	CacheDir      string
	Algorithm     int
	MinSimilarity float64
	MaxShift      time.Duration
	MaxShiftSet   bool // max-shift may legitimately be 0 (bound disabled)
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-reprise.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-reprise"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-reprise"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if data == nil {
		data = make(map[string]string)
	}

	// Environment variable fallback (only if not set in config).
	for key, env := range map[string]string{
		KeyCacheDir:      EnvCacheDir,
		KeyAlgorithm:     EnvAlgorithm,
		KeyMinSimilarity: EnvMinSimilarity,
		KeyMaxShift:      EnvMaxShift,
	} {
		if data[key] == "" {
			data[key] = os.Getenv(env)
		}
	}

	cfg.CacheDir = ExpandPath(data[KeyCacheDir])
	if v := data[KeyAlgorithm]; v != "" {
		if cfg.Algorithm, err = parseAlgorithm(v); err != nil {
			return cfg, err
		}
	}
	if v := data[KeyMinSimilarity]; v != "" {
		if cfg.MinSimilarity, err = parseSimilarity(v); err != nil {
			return cfg, err
		}
	}
	if v := data[KeyMaxShift]; v != "" {
		if cfg.MaxShift, err = parseShift(v); err != nil {
			return cfg, err
		}
		cfg.MaxShiftSet = true
	}

	return cfg, nil
}

// Validate checks that value is acceptable for key.
func Validate(key, value string) error {
	var err error
	switch key {
	case KeyCacheDir:
		if value == "" {
			err = fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	case KeyAlgorithm:
		_, err = parseAlgorithm(value)
	case KeyMinSimilarity:
		_, err = parseSimilarity(value)
	case KeyMaxShift:
		_, err = parseShift(value)
	default:
		err = fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	return err
}

func parseAlgorithm(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("%w: %s=%q (want 1-5)", ErrInvalidValue, KeyAlgorithm, v)
	}
	return n, nil
}

func parseSimilarity(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("%w: %s=%q (want a number in (0, 1])", ErrInvalidValue, KeyMinSimilarity, v)
	}
	return f, nil
}

func parseShift(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s=%q (want a duration such as 16s, 0 disables)", ErrInvalidValue, KeyMaxShift, v)
	}
	return d, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file with keys in sorted order.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// EnsureCacheDir creates d if needed and checks that it is a writable directory.
func EnsureCacheDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: cache directory cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user cache dir
			return fmt.Errorf("cannot create directory: %w", err)
		}
		return nil
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	testFile := filepath.Join(d, ".go-reprise-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("%s: %w: %v", d, ErrNotWritable, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
