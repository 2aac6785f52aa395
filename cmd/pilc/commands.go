package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"rgehrsitz/pilc/internal/preprocessor"
	"rgehrsitz/pilc/internal/resolver"
	"rgehrsitz/pilc/internal/rules"
	"rgehrsitz/pilc/internal/runtime"
)

func defineCommands() map[string]*Command {
	commands := make(map[string]*Command)
	for _, cmd := range []*Command{
		newCatalogCommand(),
		newFormsCommand(),
		newResolveCommand(),
		newValidateCommand(),
		newSubmitCommand(),
	} {
		commands[cmd.Name] = cmd
	}
	return commands
}

func newCatalogCommand() *Command {
	cmd := &Command{
		Name:        "catalog",
		Description: "Print the checks and actions of every category",
		FlagSet:     flag.NewFlagSet("catalog", flag.ExitOnError),
	}
	category := cmd.FlagSet.String("category", "", "Only print this category")

	cmd.Run = func(_ context.Context, e *env) error {
		categories := e.catalog.Categories()
		if *category != "" {
			c, err := rules.ParseCategory(*category)
			if err != nil {
				return err
			}
			categories = []rules.Category{c}
		}
		entries := make([]*rules.Entry, 0, len(categories))
		for _, c := range categories {
			entry, err := e.catalog.Lookup(c)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return writeJSON(os.Stdout, entries)
	}
	return cmd
}

func newFormsCommand() *Command {
	cmd := &Command{
		Name:        "forms",
		Description: "Fetch the Components and Events page descriptors from the backend",
		FlagSet:     flag.NewFlagSet("forms", flag.ExitOnError),
	}

	cmd.Run = func(ctx context.Context, e *env) error {
		ctrl := e.controller()
		if err := ctrl.LoadForms(ctx); err != nil {
			return err
		}
		s := ctrl.Snapshot()
		return writeJSON(os.Stdout, map[string]interface{}{
			"components": s.ComponentForms,
			"events":     s.EventForms,
		})
	}
	return cmd
}

func newResolveCommand() *Command {
	cmd := &Command{
		Name:        "resolve",
		Description: "Show the options and state of every row of a definitions file",
		FlagSet:     flag.NewFlagSet("resolve", flag.ExitOnError),
	}
	event := cmd.FlagSet.String("event", "", "Only resolve the event with this label")

	cmd.Run = func(_ context.Context, e *env) error {
		ctrl, err := loadFile(cmd.FlagSet, e)
		if err != nil {
			return err
		}
		labels := ctrl.Snapshot().Draft.Labels()
		if *event != "" {
			labels = []string{*event}
		}
		resolved := make([]resolver.ResolvedEvent, 0, len(labels))
		for _, label := range labels {
			ev, err := ctrl.ResolveEvent(label)
			if err != nil {
				return err
			}
			resolved = append(resolved, ev)
		}
		return writeJSON(os.Stdout, resolved)
	}
	return cmd
}

func newValidateCommand() *Command {
	cmd := &Command{
		Name:        "validate",
		Description: "Check that a definitions file is ready to submit",
		FlagSet:     flag.NewFlagSet("validate", flag.ExitOnError),
	}

	cmd.Run = func(_ context.Context, e *env) error {
		ctrl, err := loadFile(cmd.FlagSet, e)
		if err != nil {
			return err
		}
		s := ctrl.Snapshot()
		err = preprocessor.ValidateComponents(s.Registry)
		if err == nil {
			err = preprocessor.ValidateEvents(s.Draft, s.Registry, s.Catalog)
		}
		if err != nil {
			printProblems(err)
			return err
		}
		fmt.Printf("%d component(s), %d event(s): ready to submit\n", s.Registry.Len(), s.Draft.Len())
		return nil
	}
	return cmd
}

func newSubmitCommand() *Command {
	cmd := &Command{
		Name:        "submit",
		Description: "Submit the components and events of a definitions file to the backend",
		FlagSet:     flag.NewFlagSet("submit", flag.ExitOnError),
	}
	componentsOnly := cmd.FlagSet.Bool("components-only", false, "Only submit the component registry")

	cmd.Run = func(ctx context.Context, e *env) error {
		ctrl, err := loadFile(cmd.FlagSet, e)
		if err != nil {
			return err
		}
		if err := ctrl.SubmitComponents(ctx); err != nil {
			printProblems(err)
			return err
		}
		if !*componentsOnly {
			if err := ctrl.SubmitEvents(ctx); err != nil {
				printProblems(err)
				return err
			}
		}
		if status := ctrl.Snapshot().Submit; status != nil {
			fmt.Println(status.Message)
		}
		return nil
	}
	return cmd
}

// loadFile reads the definitions file named by the command's first argument
// into a fresh Controller.
func loadFile(fs *flag.FlagSet, e *env) (*runtime.Controller, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("no definitions file specified")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	defs, err := preprocessor.ParseDefinitions(data, e.catalog)
	if err != nil {
		return nil, err
	}
	ctrl := e.controller()
	if _, err := ctrl.Dispatch(runtime.LoadDefinitions(defs)); err != nil {
		return nil, err
	}
	log.Debug().Str("file", fs.Arg(0)).Msg("Loaded definitions")
	return ctrl, nil
}

func printProblems(err error) {
	var formErr *preprocessor.IncompleteFormError
	if !errors.As(err, &formErr) {
		return
	}
	fmt.Fprintln(os.Stderr, formErr.Message())
	for _, p := range formErr.Problems {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", p.Field, p.Reason)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
