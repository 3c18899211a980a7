package config

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	securejoin "github.com/cyphar/filepath-securejoin"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/system"
)

// projectNameRegex validates project names derived from directory names.
// They end up in container labels and in the in-container project path.
var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// namespaceRegex validates label namespaces (reverse-DNS style prefixes).
var namespaceRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)

const (
	DefaultSocket      = "/var/run/docker.sock"
	DefaultNamespace   = "cargo-sandbox"
	DefaultUser        = "cargo-sandbox-user"
	DefaultImagePrefix = "cargo-sandbox-"
	ConfigDirName      = "cargo-sandbox"
	ConfigFileName     = "config.toml"
)

// Config holds cargo-sandbox settings, loaded from config.toml
type Config struct {
	Socket          string            `toml:"socket"`
	Namespace       string            `toml:"namespace"`
	User            string            `toml:"user"`
	Home            string            `toml:"home"`             // In-container home; defaults to /home/<user>
	ImagePrefix     string            `toml:"image_prefix"`     // Image for purpose p is <prefix><p> unless Images overrides it
	Images          map[string]string `toml:"images"`           // purpose -> image
	EnvPassthrough  []string          `toml:"env_passthrough"`  // Host variables forwarded into sandboxes
	NetworkDisabled bool              `toml:"network_disabled"` // Disable networking for build sandboxes
	DefaultArgs     string            `toml:"default_args"`     // Shell-quoted args appended to every cargo command
}

// Default returns the built-in configuration
func Default() *Config {
	passthrough := make([]string, len(system.DefaultPassthrough))
	copy(passthrough, system.DefaultPassthrough)

	return &Config{
		Socket:         DefaultSocket,
		Namespace:      DefaultNamespace,
		User:           DefaultUser,
		ImagePrefix:    DefaultImagePrefix,
		Images:         map[string]string{},
		EnvPassthrough: passthrough,
	}
}

// Validate checks that the Config is valid.
func (c *Config) Validate() error {
	if c.Socket == "" {
		return fmt.Errorf("socket is required")
	}
	if !filepath.IsAbs(c.Socket) {
		return fmt.Errorf("socket must be an absolute path (got %q)", c.Socket)
	}
	if !namespaceRegex.MatchString(c.Namespace) {
		return fmt.Errorf("invalid namespace %q: must be lowercase letters, digits, dots or hyphens", c.Namespace)
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.Home != "" && !path.IsAbs(c.Home) {
		return fmt.Errorf("home must be an absolute path (got %q)", c.Home)
	}
	if c.ImagePrefix == "" {
		for _, purpose := range []string{"build", "publish", "dev"} {
			if c.Images[purpose] == "" {
				return fmt.Errorf("image_prefix is empty and no image is configured for %s", purpose)
			}
		}
	}
	if _, err := c.CargoDefaultArgs(); err != nil {
		return err
	}
	return nil
}

// Image returns the image for a sandbox purpose
func (c *Config) Image(purpose string) string {
	if image := c.Images[purpose]; image != "" {
		return image
	}
	return c.ImagePrefix + purpose
}

// ContainerHome returns the sandbox user's home directory inside containers
func (c *Config) ContainerHome() string {
	if c.Home != "" {
		return c.Home
	}
	return "/home/" + c.User
}

// Label returns the namespaced label key for name, e.g. "cargo-sandbox.project-name"
func (c *Config) Label(name string) string {
	return c.Namespace + "." + name
}

// CargoDefaultArgs splits DefaultArgs the way a shell would
func (c *Config) CargoDefaultArgs() ([]string, error) {
	if strings.TrimSpace(c.DefaultArgs) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(c.DefaultArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid default_args %q: %w", c.DefaultArgs, err)
	}
	return args, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/cargo-sandbox/config.toml, falling
// back to $HOME/.config. Returns "" when neither is set.
func DefaultPath(env system.Environment) string {
	base := env.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home := env.Getenv("HOME")
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, ConfigDirName, ConfigFileName)
}

// Load reads a TOML config file over the defaults. A missing file is not
// an error unless required is set (the path was given explicitly).
func Load(fsys system.FileSystem, configPath string, required bool) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := fsys.ReadFile(configPath)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			logging.Debug("no config file", "path", configPath)
			return cfg, nil
		}
		return nil, errors.ConfigError(fmt.Sprintf("failed to read config %s", configPath), err)
	}

	var file Config
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse config %s", configPath), err)
	}
	for _, key := range md.Undecoded() {
		logging.Warn("unknown config key", "path", configPath, "key", key.String())
	}

	cfg.merge(&file, md)

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid config %s", configPath), err)
	}

	logging.Debug("loaded config", "path", configPath)
	return cfg, nil
}

// merge overlays the keys set in a decoded file onto c
func (c *Config) merge(file *Config, md toml.MetaData) {
	if file.Socket != "" {
		c.Socket = file.Socket
	}
	if file.Namespace != "" {
		c.Namespace = file.Namespace
	}
	if file.User != "" {
		c.User = file.User
	}
	if file.Home != "" {
		c.Home = file.Home
	}
	if md.IsDefined("image_prefix") {
		c.ImagePrefix = file.ImagePrefix
	}
	for purpose, image := range file.Images {
		c.Images[purpose] = image
	}
	if md.IsDefined("env_passthrough") {
		c.EnvPassthrough = file.EnvPassthrough
	}
	if md.IsDefined("network_disabled") {
		c.NetworkDisabled = file.NetworkDisabled
	}
	if file.DefaultArgs != "" {
		c.DefaultArgs = file.DefaultArgs
	}
}

// ResolveSocket picks the engine socket: an explicit flag wins, then a
// unix:// DOCKER_HOST, then the configured socket.
func ResolveSocket(flag string, env system.Environment, cfg *Config) string {
	if flag != "" {
		return flag
	}
	if host := env.Getenv("DOCKER_HOST"); host != "" {
		if socket, ok := strings.CutPrefix(host, "unix://"); ok && socket != "" {
			return socket
		}
		logging.Debug("ignoring non-unix DOCKER_HOST", "host", host)
	}
	return cfg.Socket
}

// ProjectName derives the project name from the project directory's final
// path component.
func ProjectName(dir string) (string, error) {
	name := filepath.Base(filepath.Clean(dir))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.ValidationError(fmt.Sprintf("cannot derive a project name from %q", dir))
	}
	if !projectNameRegex.MatchString(name) {
		return "", errors.ValidationError(fmt.Sprintf("invalid project name %q: must start with a letter or digit and contain only letters, digits, dots, underscores or hyphens", name))
	}
	return name, nil
}

// ContainerProjectDir returns where the project is mounted inside a sandbox.
// The path only exists in the container, so it is joined lexically.
func ContainerProjectDir(home, project string) (string, error) {
	if !projectNameRegex.MatchString(project) {
		return "", fmt.Errorf("invalid project name %q", project)
	}
	return path.Join(home, project), nil
}

// HostProjectDir resolves symlinks in an absolute host directory so the
// bind mount source and the derived project name name the real directory.
// Missing trailing components are kept as given.
func HostProjectDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		return "", errors.ValidationError(fmt.Sprintf("project directory must be absolute (got %q)", dir))
	}
	resolved, err := securejoin.SecureJoin("/", dir)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "cannot resolve project directory "+dir, err)
	}
	return resolved, nil
}
