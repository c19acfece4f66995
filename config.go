package dbdock

import (
	"fmt"
	"os"
	"strings"

	"github.com/mfridman/interpolate"
)

// StartMode controls which provisioning path executes after the container
// responds.
type StartMode int

const (
	// StartModeCreate ensures the database and user exist, creating them if
	// necessary. This is the default and expected to be best most of the time.
	StartModeCreate StartMode = iota
	// StartModeDropCreate drops the database and user first and recreates
	// them from scratch.
	StartModeDropCreate
	// StartModeContainerOnly starts the container and waits for readiness
	// without any database, user or extension work.
	StartModeContainerOnly
)

func (m StartMode) String() string {
	switch m {
	case StartModeDropCreate:
		return "dropCreate"
	case StartModeContainerOnly:
		return "container"
	default:
		return "create"
	}
}

// ParseStartMode maps a configured start mode string to a StartMode. Parsing
// is case and whitespace insensitive; unrecognized values fall back to
// StartModeCreate rather than failing.
func ParseStartMode(s string) StartMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dropcreate":
		return StartModeDropCreate
	case "container":
		return StartModeContainerOnly
	default:
		return StartModeCreate
	}
}

// ShutdownMode is the post-test container disposal policy.
type ShutdownMode int

const (
	// ShutdownNone leaves the container running.
	ShutdownNone ShutdownMode = iota
	// ShutdownStop stops the container on shutdown.
	ShutdownStop
	// ShutdownRemove stops and removes the container on shutdown.
	ShutdownRemove
)

func (m ShutdownMode) String() string {
	switch m {
	case ShutdownStop:
		return "stop"
	case ShutdownRemove:
		return "remove"
	default:
		return "none"
	}
}

// ParseShutdownMode maps a configured shutdown mode string to a
// ShutdownMode, defaulting to ShutdownNone.
func ParseShutdownMode(s string) ShutdownMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return ShutdownStop
	case "remove":
		return ShutdownRemove
	default:
		return ShutdownNone
	}
}

// DefaultMaxReadyAttempts bounds each readiness wait phase at roughly five
// seconds of polling.
const DefaultMaxReadyAttempts = 50

// Config holds the settings for one database container. Engine packages
// construct it with their defaults applied; treat it as immutable once the
// container has been created from it.
type Config struct {
	// Platform is the engine name, e.g. "postgres" or "oracle".
	Platform string
	// ContainerName is the docker container name, the key all daemon
	// queries and shutdown registrations use.
	ContainerName string
	// Image is the full image reference including version tag.
	Image string

	Host string
	// Port is the host port the engine is exposed on.
	Port string
	// InternalPort is the port the engine listens on inside the container.
	InternalPort string

	AdminUser     string
	AdminPassword string

	Username string
	Password string
	DBName   string

	// Extensions are created after the database exists; engines without an
	// extension concept ignore them.
	Extensions []string

	// InitSQLFile is a filesystem path or resource path of a SQL file to
	// run after provisioning. Empty means none.
	InitSQLFile string

	// StartMode is the raw configured mode string, parsed by ParseStartMode
	// once per Start.
	StartMode string
	// ShutdownMode is the raw configured disposal policy, parsed by
	// ParseShutdownMode.
	ShutdownMode string

	// MaxReadyAttempts bounds each readiness wait phase; every attempt is
	// followed by a fixed 100ms pause.
	MaxReadyAttempts int

	// FastStartMode skips full provisioning when a previous run already
	// left a valid database behind. Only honored in create mode.
	FastStartMode bool

	// DockerBinary overrides the docker executable, default "docker".
	DockerBinary string

	// Oracle extras.
	ApexPort           string
	InternalApexPort   string
	StartupWaitMinutes int
}

// Summary is the one-line description used in lifecycle log messages.
func (c *Config) Summary() string {
	return fmt.Sprintf("%s image:%s port:%s db:%s user:%s",
		c.Platform, c.Image, c.Port, c.DBName, c.Username)
}

// PortMapping returns the host:container port argument for docker run.
func (c *Config) PortMapping() string {
	return c.Port + ":" + c.InternalPort
}

// Interpolate expands ${VAR} references in string-valued settings against
// the process environment. Engine constructors call it once after applying
// overrides.
func (c *Config) Interpolate() {
	env := interpolate.NewSliceEnv(os.Environ())
	for _, field := range []*string{
		&c.Image, &c.ContainerName, &c.AdminPassword, &c.Password,
		&c.Username, &c.DBName, &c.InitSQLFile,
	} {
		expanded, err := interpolate.Interpolate(env, *field)
		if err != nil {
			continue
		}
		*field = expanded
	}
}

// EnvOr returns the value of the environment variable key, or def when the
// variable is unset or empty. Engine constructors use it for DBDOCK_*
// overrides such as DBDOCK_POSTGRES_IMAGE.
func EnvOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
