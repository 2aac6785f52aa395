package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"rgehrsitz/pilc/internal/client"
	"rgehrsitz/pilc/internal/config"
	"rgehrsitz/pilc/internal/logging"
	"rgehrsitz/pilc/internal/rules"
	"rgehrsitz/pilc/internal/runtime"
)

// Command is one pilc sub-command.
type Command struct {
	Name        string
	Description string
	FlagSet     *flag.FlagSet
	Run         func(ctx context.Context, env *env) error
}

// env is what every command gets after the global flags are applied.
type env struct {
	cfg     *config.Config
	catalog *rules.Catalog
}

// controller builds a Controller backed by the configured HTTP backend.
func (e *env) controller() *runtime.Controller {
	backend := client.New(client.Options{
		BaseURL:    e.cfg.Backend.URL,
		Timeout:    e.cfg.Backend.Timeout,
		RetryCount: e.cfg.Backend.RetryCount,
	})
	return runtime.NewController(e.catalog, backend, e.cfg.Backend.EventsID)
}

var configPath = flag.String("config", "", "Path to a YAML config file")

func main() {
	commands := defineCommands()

	flag.Usage = func() { usage(commands) }
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage(commands)
		os.Exit(2)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		usage(commands)
		os.Exit(2)
	}
	_ = cmd.FlagSet.Parse(args[1:])

	e, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.Run(ctx, e); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*env, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	catalog := rules.Default()
	if cfg.CatalogPath != "" {
		if catalog, err = rules.LoadFile(cfg.CatalogPath); err != nil {
			return nil, err
		}
	}
	return &env{cfg: cfg, catalog: catalog}, nil
}

func usage(commands map[string]*Command) {
	fmt.Fprintln(os.Stderr, "Usage: pilc [-config file] <command> [options]")
	fmt.Fprintln(os.Stderr, "Available commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\t%s\n", name, commands[name].Description)
	}
}
