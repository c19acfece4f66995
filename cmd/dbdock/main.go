package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dbdock/dbdock"
	"github.com/dbdock/dbdock/clickhouse"
	"github.com/dbdock/dbdock/mariadb"
	"github.com/dbdock/dbdock/mysql"
	"github.com/dbdock/dbdock/oracle"
	"github.com/dbdock/dbdock/postgres"
	"github.com/dbdock/dbdock/redis"
	"github.com/dbdock/dbdock/sqlserver"
	"github.com/dbdock/dbdock/vertica"
)

var (
	flags        = flag.NewFlagSet("dbdock", flag.ExitOnError)
	envFile      = flags.String("env-file", "", "load environment variables from this file before anything else")
	imageVersion = flags.String("version", "", "image version tag, engine default when empty")
	mode         = flags.String("mode", "create", "start mode: create, dropCreate or container")
	shutdown     = flags.String("shutdown", "none", "shutdown mode registered on start: none, stop or remove")
	fastStart    = flags.Bool("fast", false, "skip provisioning when the database already exists (create mode only)")
	verbose      = flags.Bool("v", false, "enable debug logging")
)

func main() {
	flags.Usage = usage
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) < 2 {
		flags.Usage()
		os.Exit(2)
	}
	command, platforms := args[0], args[1:]

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("dbdock: load env file: %v", err)
		}
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, command, platforms); err != nil {
		log.Fatalf("dbdock: %v", err)
	}
}

func run(ctx context.Context, logger *slog.Logger, command string, platforms []string) error {
	containers := make([]*dbdock.Container, 0, len(platforms))
	for _, platform := range platforms {
		c, err := newContainer(platform, logger)
		if err != nil {
			return err
		}
		containers = append(containers, c)
	}

	switch command {
	case "start":
		g, ctx := errgroup.WithContext(ctx)
		for _, c := range containers {
			g.Go(func() error {
				if !c.Start(ctx) {
					return fmt.Errorf("failed to start %s", c.Config().ContainerName)
				}
				return nil
			})
		}
		return g.Wait()
	case "stop":
		for _, c := range containers {
			if err := c.Stop(ctx); err != nil {
				return err
			}
		}
		return nil
	case "remove":
		for _, c := range containers {
			if err := c.Remove(ctx); err != nil {
				return err
			}
		}
		return nil
	case "url":
		for _, c := range containers {
			fmt.Println(c.URL())
		}
		return nil
	case "env":
		// Shell-evalable exports for the started databases.
		for i, c := range containers {
			fmt.Printf("export DBDOCK_%s_URL=%q\n", strings.ToUpper(platforms[i]), c.URL())
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func newContainer(platform string, logger *slog.Logger) (*dbdock.Container, error) {
	var cfg *dbdock.Config
	var build func(*dbdock.Config, ...dbdock.OptionsFunc) *dbdock.Container

	switch platform {
	case "postgres":
		cfg, build = postgres.NewConfig(*imageVersion), postgres.NewContainer
	case "mysql":
		cfg, build = mysql.NewConfig(*imageVersion), mysql.NewContainer
	case "mariadb":
		cfg, build = mariadb.NewConfig(*imageVersion), mariadb.NewContainer
	case "sqlserver":
		cfg, build = sqlserver.NewConfig(*imageVersion), sqlserver.NewContainer
	case "oracle":
		cfg, build = oracle.NewConfig(*imageVersion), oracle.NewContainer
	case "clickhouse":
		cfg, build = clickhouse.NewConfig(*imageVersion), clickhouse.NewContainer
	case "redis":
		cfg, build = redis.NewConfig(*imageVersion), redis.NewContainer
	case "vertica":
		cfg, build = vertica.NewConfig(*imageVersion), vertica.NewContainer
	default:
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	cfg.StartMode = *mode
	cfg.ShutdownMode = *shutdown
	cfg.FastStartMode = *fastStart
	return build(cfg, dbdock.WithLogger(logger)), nil
}

func usage() {
	fmt.Print(usagePrefix)
	flags.PrintDefaults()
	fmt.Print(usageCommands)
}

var (
	usagePrefix = `Usage: dbdock [OPTIONS] COMMAND PLATFORM [PLATFORM...]

Platforms:
    postgres
    mysql
    mariadb
    sqlserver
    oracle
    clickhouse
    redis
    vertica

Examples:
    dbdock start postgres
    dbdock -mode dropCreate start postgres mysql
    dbdock -shutdown remove -v start clickhouse
    dbdock url postgres
    dbdock remove postgres mysql

Options:
`

	usageCommands = `
Commands:
    start    Start the container(s) and provision per the start mode
    stop     Stop the container(s)
    remove   Stop and remove the container(s)
    url      Print the database connection string(s)
    env      Print shell exports with the connection string(s)
`
)
