package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var (
	// ErrExecutableNotFound reports that no interpreter could be located.
	ErrExecutableNotFound = errors.New("interpreter executable not found")
	// ErrExecutableIsDirectory reports a resolved path that names a directory.
	ErrExecutableIsDirectory = errors.New("interpreter executable path is a directory")
)

const resolveCacheTTL = time.Minute

// Resolver locates the interpreter executable. Successful lookups are cached
// briefly per (explicit path, environment, PATH) so that both transports of
// an engine, and repeated engines, do not walk PATH again.
type Resolver struct {
	EnvVar       string
	Candidates   []string
	InstallPaths []string
	Logger       *slog.Logger

	cache *ttlcache.Cache[string, string]
}

// NewResolver returns a resolver with the default search order.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		EnvVar:       EnvExecutable,
		Candidates:   DefaultCandidates,
		InstallPaths: DefaultInstallPaths,
		Logger:       logger,
		cache: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](resolveCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

var defaultResolver = NewResolver(nil)

// ResolveExecutable resolves with the default resolver.
func ResolveExecutable(explicit string) (string, error) {
	return defaultResolver.Resolve(explicit)
}

// Resolve returns the interpreter path. The order is: explicit, the
// environment variable, candidate basenames on PATH, well-known install
// paths. An explicit or environment path that does not exist is an error;
// it does not fall through to the later sources.
func (r *Resolver) Resolve(explicit string) (string, error) {
	explicit = trimBalancedQuotes(strings.TrimSpace(explicit))
	envValue := trimBalancedQuotes(strings.TrimSpace(os.Getenv(r.EnvVar)))
	key := explicit + "\x00" + envValue + "\x00" + os.Getenv("PATH")
	if item := r.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	path, err := r.resolve(explicit, envValue)
	if err != nil {
		return "", err
	}
	r.cache.Set(key, path, ttlcache.DefaultTTL)
	return path, nil
}

func (r *Resolver) resolve(explicit, envValue string) (string, error) {
	if explicit != "" {
		return r.validate(explicit, "explicit path")
	}
	if envValue != "" {
		return r.validate(envValue, r.EnvVar)
	}

	if path, ok := firstOnPath(r.Candidates, lookPathFn); ok {
		return r.validate(path, "PATH")
	}

	for _, path := range r.InstallPaths {
		if _, err := os.Stat(path); err == nil {
			return r.validate(path, "install path")
		}
	}

	return "", fmt.Errorf("%w: set %s, configure an explicit path, or put one of %s on PATH",
		ErrExecutableNotFound, r.EnvVar, strings.Join(r.Candidates, ", "))
}

func (r *Resolver) validate(path, source string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s (from %s)", ErrExecutableNotFound, path, source)
		}
		return "", fmt.Errorf("checking interpreter %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s (from %s)", ErrExecutableIsDirectory, path, source)
	}
	if !strings.EqualFold(filepath.Ext(path), ".exe") {
		r.Logger.Warn("interpreter executable does not have an .exe extension", "path", path, "source", source)
	}
	return path, nil
}
