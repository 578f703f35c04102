package migrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Preview returns the SQL that Upgrade(rev) would execute, without
// executing it. Each pending migration is introduced by a comment naming
// its version.
func (r *Runner) Preview(ctx context.Context, t *Target, rev string) (string, error) {
	if rev == "" {
		rev = Head
	}
	var limit uint
	if rev != Head {
		v, err := parseVersion(rev)
		if err != nil {
			return "", &types.MigrationError{App: t.Name, Op: "preview", Err: err}
		}
		limit = v
	}

	src, err := t.Source()
	if err != nil {
		return "", &types.MigrationError{App: t.Name, Op: "preview", Err: err}
	}
	status, err := r.Current(ctx, t)
	if err != nil {
		_ = src.Close()
		return "", err
	}
	defer src.Close()

	var next uint
	if status.Applied {
		next, err = src.Next(status.Version)
	} else {
		next, err = src.First()
	}

	var b strings.Builder
	for err == nil {
		if rev != Head && next > limit {
			break
		}
		if werr := writeUp(&b, src, next); werr != nil {
			return "", &types.MigrationError{App: t.Name, Op: "preview", Err: werr}
		}
		next, err = src.Next(next)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", &types.MigrationError{App: t.Name, Op: "preview", Err: err}
	}
	return b.String(), nil
}

type upReader interface {
	ReadUp(version uint) (io.ReadCloser, string, error)
}

func writeUp(b *strings.Builder, src upReader, version uint) error {
	body, ident, err := src.ReadUp(version)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer body.Close()

	sql, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	fmt.Fprintf(b, "-- %d %s\n%s", version, ident, strings.TrimRight(string(sql), "\n"))
	b.WriteString("\n\n")
	return nil
}
