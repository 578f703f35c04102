package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/domain/metadata"
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/schema"
)

const versionLayout = "20060102150405"

var (
	ErrEmptyDiff       = errors.New("no schema changes detected")
	ErrExternalApp     = errors.New("external apps generate migrations in their own project")
	ErrMessageRequired = errors.New("migration message is required")
)

// Diff is the statements that move the live schema to the desired one,
// and back.
type Diff struct {
	Up   []string
	Down []string
}

// Empty reports whether the schemas already match.
func (d Diff) Empty() bool {
	return len(d.Up) == 0
}

// DiffSchema compares tables and columns by name. Column type changes are
// not detected.
func DiffSchema(desired, live *schema.Metadata) Diff {
	var d Diff
	if desired == nil {
		desired = schema.New()
	}
	for _, want := range desired.Tables {
		have, ok := live.Table(want.Name)
		if !ok {
			d.Up = append(d.Up, want.CreateSQL())
			d.Down = append(d.Down, want.DropSQL())
			continue
		}
		for _, c := range want.Columns {
			if _, ok := have.Column(c.Name); !ok {
				d.Up = append(d.Up, schema.AddColumnSQL(want.Name, c))
				d.Down = append(d.Down, schema.DropColumnSQL(want.Name, c.Name))
			}
		}
		for _, c := range have.Columns {
			if _, ok := want.Column(c.Name); !ok {
				d.Up = append(d.Up, schema.DropColumnSQL(want.Name, c.Name))
				d.Down = append(d.Down, schema.AddColumnSQL(want.Name, c))
			}
		}
	}
	for _, name := range live.TableNames() {
		if _, ok := desired.Table(name); ok {
			continue
		}
		have, _ := live.Table(name)
		d.Up = append(d.Up, have.DropSQL())
		d.Down = append(d.Down, have.CreateSQL())
	}

	for i, j := 0, len(d.Down)-1; i < j; i, j = i+1, j-1 {
		d.Down[i], d.Down[j] = d.Down[j], d.Down[i]
	}
	return d
}

// SharedSchema is the desired schema of the shared stream: the core
// models merged with those of every internal app. It also returns the
// tables owned by external apps, which the shared stream must not touch:
// those in their models and those their own up migrations create.
func SharedSchema(c *metadata.Collector, layout paths.Layout, apps []*types.AppRecord) (*schema.Metadata, []string, error) {
	core := &types.AppRecord{Name: CoreName, Kind: types.KindInternal, ImportPath: CoreName}
	sources := []*schema.Metadata{c.Collect(core)}

	var exclude []string
	for _, rec := range apps {
		md := c.Collect(rec)
		if rec.Kind == types.KindExternal {
			if md != nil {
				exclude = appendNew(exclude, md.TableNames()...)
			}
			t, err := TargetFor(layout, rec)
			if err != nil {
				continue
			}
			created, err := t.CreatedTables()
			if err != nil {
				return nil, nil, &types.MigrationError{App: rec.Name, Op: "makemigrations", Err: err}
			}
			exclude = appendNew(exclude, created...)
			continue
		}
		if md != nil {
			sources = append(sources, md)
		}
	}

	desired, err := schema.Merge(sources...)
	if err != nil {
		return nil, nil, &types.MigrationError{App: CoreName, Op: "makemigrations", Err: err}
	}
	return desired, exclude, nil
}

var createTable = regexp.MustCompile("(?i)\\bcreate\\s+table\\s+(?:if\\s+not\\s+exists\\s+)?(?:[\"`\\w]+\\.)?[\"`]?(\\w+)")

// CreatedTables lists the tables the stream's up migrations create, in
// version order. A missing directory creates none.
func (t *Target) CreatedTables() ([]string, error) {
	if !t.Exists() {
		return nil, nil
	}
	src, err := t.Source()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var b strings.Builder
	v, err := src.First()
	for err == nil {
		if werr := writeUp(&b, src, v); werr != nil {
			return nil, werr
		}
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read migrations from %s: %w", t.Location(), err)
	}

	var names []string
	for _, m := range createTable.FindAllStringSubmatch(b.String(), -1) {
		names = appendNew(names, m[1])
	}
	return names, nil
}

func appendNew(names []string, more ...string) []string {
	for _, n := range more {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// Generator writes migration files from schema differences.
type Generator struct {
	url string
	now func() time.Time
	options
}

// NewGenerator creates a generator that diffs against the database at url.
func NewGenerator(url string, opts ...Option) *Generator {
	return &Generator{url: url, now: time.Now, options: newOptions(opts)}
}

// Generate diffs desired against the live database, ignoring version
// tables and the excluded tables, and writes an up/down migration pair
// into t's directory. It returns the path of the up file.
func (g *Generator) Generate(ctx context.Context, t *Target, message string, desired *schema.Metadata, exclude []string) (string, error) {
	fail := func(err error) (string, error) {
		return "", &types.MigrationError{App: t.Name, Op: "makemigrations", Err: err}
	}
	if t.Kind == types.KindExternal {
		return fail(ErrExternalApp)
	}
	if t.Dir == "" {
		return fail(fmt.Errorf("%w: %s", ErrMissingDir, t.Location()))
	}
	slug := slugify(message)
	if slug == "" {
		return fail(ErrMessageRequired)
	}

	db, err := Open(ctx, g.url)
	if err != nil {
		return fail(err)
	}
	defer db.Close()

	live, err := Introspect(ctx, db)
	if err != nil {
		return fail(err)
	}
	skip := append([]string{}, exclude...)
	for _, name := range live.TableNames() {
		if IsVersionTable(name) {
			skip = append(skip, name)
		}
	}

	diff := DiffSchema(desired.Without(exclude...), live.Without(skip...))
	if diff.Empty() {
		return fail(ErrEmptyDiff)
	}

	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return fail(fmt.Errorf("failed to create %s: %w", t.Dir, err))
	}
	base := filepath.Join(t.Dir, g.now().UTC().Format(versionLayout)+"_"+slug)
	up, down := base+".up.sql", base+".down.sql"
	if err := os.WriteFile(up, render(diff.Up), 0o644); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", up, err))
	}
	if err := os.WriteFile(down, render(diff.Down), 0o644); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", down, err))
	}

	g.logger.Info("Migration generated",
		zap.String("target", t.Name),
		zap.String("file", up),
		zap.Int("statements", len(diff.Up)))
	return up, nil
}

func render(stmts []string) []byte {
	return []byte(strings.Join(stmts, "\n\n") + "\n")
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(message string) string {
	s := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(message), "_"), "_")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "_")
	}
	return s
}
