// Package config resolves the service's environment-variable configuration,
// exactly the knobs the original Python services read: INDEXDBPATH,
// SEQPATH, MOUNTPATH, plus a derived file-handle cache capacity from the
// process's RLIMIT_NOFILE soft limit.
//
// An optional .env file is merged in via joho/godotenv before the
// environment is read; godotenv is the one dependency here that the teacher
// stack does not already carry.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sys/unix"
)

// AliasMode controls whether alias identifiers (non-canonical names a
// sequence is also known by) are included in metadata responses, resolving
// spec.md's open question in favor of "off by default, opt in".
type AliasMode int

const (
	AliasesDisabled AliasMode = iota
	AliasesEnabled
)

// Config holds everything the server needs to start, resolved once at
// startup from the environment (after an optional .env load).
type Config struct {
	IndexDBPath string
	SeqPath     string
	MountPath   string

	ListenAddr string

	// MaxOpenFileHandles bounds filecache.Cache's capacity. Derived from
	// RLIMIT_NOFILE unless overridden.
	MaxOpenFileHandles int

	Debug    bool
	LogLevel string

	Aliases AliasMode

	// AliasNamingAuthority, when non-empty, is attached to every emitted
	// alias entry — the naming_authority the older API variants hardcode
	// to "ensembl", promoted here to a configuration choice.
	AliasNamingAuthority string
}

// reservedFileHandles mirrors the original service's softlimit-24 margin,
// leaving headroom for stdio, listening sockets, and the index DB's own
// open files.
const reservedFileHandles = 24

const defaultMountPath = "/"

// Load reads configuration from the process environment, first merging in
// envFile if it exists. A missing file is not an error: Load checks for it
// and skips godotenv.Load, which would otherwise fail on a missing file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("loading env file %q: %w", envFile, err)
			}
		}
	}

	c := &Config{
		IndexDBPath: os.Getenv("INDEXDBPATH"),
		SeqPath:     os.Getenv("SEQPATH"),
		MountPath:   envOr("MOUNTPATH", defaultMountPath),
		ListenAddr:  envOr("LISTEN_ADDR", ":8080"),
		LogLevel:    envOr("LOGLEVEL", "2"),
		Debug:       envBool("DEBUG"),
		Aliases:     AliasesDisabled,
	}
	if envBool("ALIASES_ENABLED") {
		c.Aliases = AliasesEnabled
	}
	c.AliasNamingAuthority = os.Getenv("ALIAS_NAMING_AUTHORITY")

	if c.IndexDBPath == "" {
		return nil, fmt.Errorf("INDEXDBPATH is not set")
	}
	if c.SeqPath == "" {
		return nil, fmt.Errorf("SEQPATH is not set")
	}
	if _, err := os.Stat(c.IndexDBPath); err != nil {
		return nil, fmt.Errorf("index DB file not found: %s (set INDEXDBPATH)", c.IndexDBPath)
	}
	if info, err := os.Stat(c.SeqPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("sequence data directory not found: %s (set SEQPATH)", c.SeqPath)
	}

	max, err := maxOpenFileHandlesOverrideOrRlimit()
	if err != nil {
		return nil, err
	}
	c.MaxOpenFileHandles = max

	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

// maxOpenFileHandlesOverrideOrRlimit honors an explicit MAX_OPEN_FILEHANDLES
// override, and otherwise derives the cache capacity from RLIMIT_NOFILE the
// same way the original Python services compute it: softlimit - 24.
func maxOpenFileHandlesOverrideOrRlimit() (int, error) {
	if v := os.Getenv("MAX_OPEN_FILEHANDLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("MAX_OPEN_FILEHANDLES must be a positive integer, got %q", v)
		}
		return n, nil
	}

	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("reading RLIMIT_NOFILE: %w", err)
	}
	max := int(rlimit.Cur) - reservedFileHandles
	if max < 1 {
		max = 1
	}
	return max, nil
}
