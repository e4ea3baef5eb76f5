package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"archq/internal/container"
	"archq/internal/export"
	"archq/internal/obsidian"
	"archq/internal/plugin"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "init",
		short: "Create a new archq workspace",
		usage: "archq init <workspace>",
		long: `Create a new workspace at ~/.archq/<workspace>/ (or $ARCHQ_HOME/<workspace>/).

Errors if the workspace already exists.
`,
		run: runInit,
	},
	{
		name:  "add",
		short: "Add a project to a workspace",
		usage: "archq add <workspace> <project> [<model.yaml> <exporter>...]",
		long: `Add a new project to an existing workspace.

With only a workspace and project name, prompts for the architecture
model path, the exporters to run and each exporter's configuration.
When the model path and at least one exporter are given, nothing is
prompted and every exporter uses its defaults.

Writes ~/.archq/<workspace>/<project>.yaml. Errors if the project
already exists.
`,
		run: runAdd,
	},
	{
		name:  "evaluate",
		short: "Evaluate every project in a workspace",
		usage: "archq evaluate <workspace>",
		long: `Evaluate the architecture model of every project in the workspace
concurrently and run each project's exporters, writing reports to
~/.archq/<workspace>/<project>/<exporter>/.

Factors excluded in .archq/settings.yaml are reported as n/a. When
metrics.textfile is set, evaluation metrics are written there in the
Prometheus text format.
`,
		run: runEvaluate,
	},
	{
		name:  "check",
		short: "Evaluate one architecture model and print the results",
		usage: "archq check [-o table|yaml] <model.yaml>",
		long: `Evaluate a single architecture model and print aspect and factor
results as tables (default) or as results YAML.

Exits non-zero when the model cannot be loaded. Failed measures are
reported as n/a and listed below the tables.
`,
		run: runCheck,
	},
	{
		name:  "watch",
		short: "Re-evaluate a model whenever it changes",
		usage: "archq watch <model.yaml>",
		long: `Evaluate a model, print the results and re-evaluate every time the
file is written. Stops on Ctrl-C.
`,
		run: runWatch,
	},
	{
		name:  "catalog",
		short: "List quality aspects, product factors and measures",
		usage: "archq catalog",
		long: `Print the built-in quality model: aspects, product factors with
their evaluation and impacts, and measures.
`,
		run: runCatalog,
	},
	{
		name:  "list",
		short: "List workspaces and their projects",
		usage: "archq list [<workspace>]",
		long: `List all workspaces, or the projects of one workspace with their
model path and exporters.
`,
		run: runList,
	},
	{
		name:  "remove",
		short: "Remove a workspace or one of its projects",
		usage: "archq remove <workspace> [<project>]",
		long: `Remove a project (config and reports) from a workspace, or the
whole workspace when no project is given.
`,
		run: runRemove,
	},
	{
		name:  "bundle",
		short: "Collect a workspace's reports into one directory",
		usage: "archq bundle <workspace> [<dir> [<description>]]",
		long: `Copy every report of the workspace into <dir>/.tmp/archq-bundle/,
flattening <project>/<exporter>/ to <project>-<exporter>/, and write the
description to index.md. <dir> defaults to the current directory.

Errors if the bundle directory already exists.
`,
		run: runBundle,
	},
}

// exporters is the registry of available result exporters.
var exporters = plugin.NewRegistry(
	export.Markdown{},
	export.YAML{},
	obsidian.Vault{},
)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "archq — cloud-native architecture quality evaluation\n\n")
	fmt.Fprintf(w, "Usage:\n  archq <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nExporters: %s\n", strings.Join(exporters.Names(), ", "))
	fmt.Fprintf(w, "\nRun 'archq help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "archq: unknown command %q\n\nRun 'archq help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'archq help' for usage.", args[0])
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func runInit(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: archq init <workspace>")
	}
	name := args[0]
	if err := container.Init(name); err != nil {
		return err
	}
	w, err := container.Open(name)
	if err != nil {
		return err
	}
	fmt.Printf("created workspace %q at %s\n", name, w.Dir)
	return nil
}

// ---------------------------------------------------------------------------
// add
// ---------------------------------------------------------------------------

func runAdd(args []string) error {
	if len(args) < 2 || len(args) == 3 {
		return fmt.Errorf("usage: archq add <workspace> <project> [<model.yaml> <exporter>...]")
	}
	workspaceName := args[0]
	projectName := args[1]

	w, err := container.Open(workspaceName)
	if err != nil {
		return err
	}

	var cfg container.ProjectConfig
	if len(args) > 3 {
		cfg, err = projectFromArgs(args[2], args[3:])
	} else {
		cfg, err = promptProject()
	}
	if err != nil {
		return err
	}

	if err := w.AddProject(projectName, cfg); err != nil {
		return err
	}
	fmt.Printf("added project %q to workspace %q\n", projectName, workspaceName)
	return nil
}

// projectFromArgs builds a project config without prompting. Every
// exporter gets its default answers.
func projectFromArgs(model string, names []string) (container.ProjectConfig, error) {
	cfg := container.ProjectConfig{Model: model, Exporters: make(map[string]map[string]string)}
	for _, name := range names {
		e, err := exporters.Get(name)
		if err != nil {
			return cfg, err
		}
		questions, err := e.Configure()
		if err != nil {
			return cfg, fmt.Errorf("configure exporter %s: %w", name, err)
		}
		answers := make(map[string]string, len(questions))
		for _, q := range questions {
			answers[q.Key] = q.Default
		}
		cfg.Exporters[name] = answers
	}
	return cfg, nil
}

// promptProject asks for the model path and exporters, then for each
// chosen exporter's configuration.
func promptProject() (container.ProjectConfig, error) {
	var cfg container.ProjectConfig
	projectQuestions := []plugin.ConfigQuestion{
		{Key: "model", Prompt: "Architecture model (YAML file)", Type: "text"},
		{Key: "exporters", Prompt: "Exporters (" + strings.Join(exporters.Names(), ", ") + ")", Type: "text", Default: "markdown"},
	}
	answers, err := promptQuestions(projectQuestions)
	if err != nil {
		return cfg, fmt.Errorf("prompt: %w", err)
	}
	cfg.Model = plugin.Answer(projectQuestions, answers, "model")
	cfg.Exporters = make(map[string]map[string]string)

	for _, name := range splitList(plugin.Answer(projectQuestions, answers, "exporters")) {
		e, err := exporters.Get(name)
		if err != nil {
			return cfg, err
		}
		questions, err := e.Configure()
		if err != nil {
			return cfg, fmt.Errorf("configure exporter %s: %w", name, err)
		}
		a, err := promptQuestions(questions)
		if err != nil {
			return cfg, fmt.Errorf("prompt: %w", err)
		}
		cfg.Exporters[name] = a
	}
	return cfg, nil
}

// splitList splits a comma or space separated answer, dropping blanks.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

// ---------------------------------------------------------------------------
// list / remove
// ---------------------------------------------------------------------------

func runList(args []string) error {
	if len(args) == 0 {
		names, err := container.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no workspaces (run 'archq init <workspace>')")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	w, err := container.Open(args[0])
	if err != nil {
		return err
	}
	projects, err := w.ListProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		cfg, err := w.LoadProject(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading project %q: %v\n", p, err)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", p, cfg.Model, strings.Join(exporterNames(cfg), ","))
	}
	return nil
}

func runRemove(args []string) error {
	switch len(args) {
	case 1:
		if err := container.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed workspace %q\n", args[0])
	case 2:
		w, err := container.Open(args[0])
		if err != nil {
			return err
		}
		if err := w.RemoveProject(args[1]); err != nil {
			return err
		}
		fmt.Printf("removed project %q from workspace %q\n", args[1], args[0])
	default:
		return fmt.Errorf("usage: archq remove <workspace> [<project>]")
	}
	return nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
