package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/appkit/internal/domain/manifest"
	"github.com/GriffinCanCode/appkit/internal/domain/resolver"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/internal/validation"
)

// ErrInvalidApp is returned by app validate when any check fails.
var ErrInvalidApp = errors.New("app has validation errors")

func newAppCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Inspect the apps of a project",
	}
	cmd.AddCommand(newAppListCommand(e), newAppValidateCommand(e))
	return cmd
}

// AppSummary is one row of app list.
type AppSummary struct {
	Name           string `json:"name" yaml:"name"`
	Kind           string `json:"kind" yaml:"kind"`
	Version        string `json:"version" yaml:"version"`
	ImportPath     string `json:"import_path" yaml:"import_path"`
	RoutePrefix    string `json:"route_prefix" yaml:"route_prefix"`
	FilesystemPath string `json:"filesystem_path,omitempty" yaml:"filesystem_path,omitempty"`
	MigrationsPath string `json:"migrations_path,omitempty" yaml:"migrations_path,omitempty"`
}

func summarize(rec *types.AppRecord) AppSummary {
	return AppSummary{
		Name:           rec.Name,
		Kind:           rec.Kind.String(),
		Version:        rec.Version(),
		ImportPath:     rec.ImportPath,
		RoutePrefix:    rec.RoutePrefix,
		FilesystemPath: rec.FilesystemPath,
		MigrationsPath: rec.MigrationsPath,
	}
}

func newAppListCommand(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the apps configured in appkit.toml",
		Long: `Load every configured app without running its entrypoint and print
name, kind and route prefix. --verbose adds paths.

Examples:
  appkit app list
  appkit app list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			return runAppList(e, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(FormatText), "Output format (text, json, yaml)")
	return cmd
}

func runAppList(e *env, format OutputFormat) error {
	reg, err := e.loader().LoadAll()
	if err != nil {
		return err
	}

	apps := make([]AppSummary, 0, reg.Len())
	for _, rec := range reg.List() {
		apps = append(apps, summarize(rec))
	}
	if format != FormatText {
		return writeStructured(e.opts.Out, format, apps)
	}

	if len(apps) == 0 {
		fmt.Fprintln(e.opts.Out, "No apps found in project")
		return nil
	}
	fmt.Fprintln(e.opts.Out, "Apps in project:")
	for _, a := range apps {
		prefix := "prefix: " + a.RoutePrefix
		if a.RoutePrefix == "" {
			prefix = "(no prefix)"
		}
		fmt.Fprintf(e.opts.Out, "  - %s (%s) - %s\n", a.Name, a.Kind, prefix)
		if e.verbose {
			fmt.Fprintf(e.opts.Out, "      import: %s\n", a.ImportPath)
			if a.FilesystemPath != "" {
				fmt.Fprintf(e.opts.Out, "      path: %s\n", a.FilesystemPath)
			}
			if a.MigrationsPath != "" {
				fmt.Fprintf(e.opts.Out, "      migrations: %s\n", a.MigrationsPath)
			}
		}
	}
	return nil
}

// ValidationReport is the JSON form of app validate.
type ValidationReport struct {
	App      string   `json:"app"`
	Type     string   `json:"type"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func newAppValidateCommand(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Validate one app without running it",
		Long: `Check an app's manifest, its import isolation and its migrations.
The name may be the app name or any configured entry ending in it.

Examples:
  appkit app validate blog
  appkit app validate payments --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppValidate(cmd.Context(), e, args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func runAppValidate(ctx context.Context, e *env, name string, asJSON bool) error {
	project, err := config.LoadProject(e.root)
	if err != nil {
		return err
	}
	res := resolver.New(e.root, e.opts.Catalog)

	var duplicates []string
	for n, entries := range namesByEntry(res, project.Apps) {
		if len(entries) > 1 {
			duplicates = append(duplicates, fmt.Sprintf("duplicate app name %q in entries: %s", n, strings.Join(entries, ", ")))
		}
	}
	sort.Strings(duplicates)

	entry, err := matchEntry(project.Apps, name)
	if err != nil {
		return err
	}
	loc, err := res.Resolve(entry)
	if err != nil {
		return err
	}

	report := ValidationReport{App: loc.Name, Type: loc.Kind.String()}
	var result validation.Result
	m, err := manifest.NewLoader().Read(loc)
	if err != nil {
		result.AddError("%v", err)
	} else {
		layout := e.layout()
		rec := &types.AppRecord{
			Name:           loc.Name,
			Kind:           loc.Kind,
			ImportPath:     loc.ImportPath,
			FilesystemPath: loc.FilesystemPath,
			Files:          loc.Files,
			MigrationsPath: manifest.MigrationsPath(layout, loc, m),
			RoutePrefix:    manifest.RoutePrefix(loc.Name, m),
			Manifest:       m,
		}
		result = validation.New(layout).Validate(ctx, rec)
	}
	result.Warnings = append(duplicates, result.Warnings...)

	report.Valid = result.Valid()
	report.Errors = nonNil(result.Errors)
	report.Warnings = nonNil(result.Warnings)

	if asJSON {
		if err := writeStructured(e.opts.Out, FormatJSON, report); err != nil {
			return err
		}
	} else {
		printReport(e, report)
	}
	if !report.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidApp, report.App)
	}
	return nil
}

func printReport(e *env, r ValidationReport) {
	out := e.opts.Out
	fmt.Fprintf(out, "Validating %s (%s)\n", r.App, r.Type)
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(out, "  error: %s\n", msg)
	}
	if r.Valid {
		fmt.Fprintf(out, "%s is valid\n", r.App)
	}
}

// namesByEntry groups the resolvable entries by app name.
func namesByEntry(res *resolver.Resolver, entries []string) map[string][]string {
	out := make(map[string][]string)
	for _, entry := range entries {
		loc, err := res.Resolve(entry)
		if err != nil {
			continue
		}
		out[loc.Name] = append(out[loc.Name], entry)
	}
	return out
}

// matchEntry finds the single configured entry that names the app.
func matchEntry(entries []string, name string) (string, error) {
	var matches []string
	for _, entry := range entries {
		if entry == name || strings.HasSuffix(entry, "."+name) || strings.HasSuffix(entry, "/"+name) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q is not configured in appkit.toml", types.ErrAppNotFound, name)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("multiple entries match %q: %s", name, strings.Join(matches, ", "))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
