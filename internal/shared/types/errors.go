package types

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names one step of the load pipeline.
type Stage string

const (
	StageResolve    Stage = "resolve"
	StageManifest   Stage = "manifest"
	StageEntrypoint Stage = "entrypoint-validate"
	StageRegister   Stage = "register"
	StageRouter     Stage = "router"
)

// Stage sentinels, matched through errors.Is against a *LoadError.
var (
	ErrResolve    = errors.New("resolve error")
	ErrManifest   = errors.New("manifest error")
	ErrEntrypoint = errors.New("entrypoint error")
	ErrRegister   = errors.New("register error")
	ErrRouter     = errors.New("router error")
)

var (
	ErrDuplicateApp = errors.New("app already registered")
	ErrAppNotFound  = errors.New("app not found")
)

func (s Stage) sentinel() error {
	switch s {
	case StageResolve:
		return ErrResolve
	case StageManifest:
		return ErrManifest
	case StageEntrypoint:
		return ErrEntrypoint
	case StageRegister:
		return ErrRegister
	case StageRouter:
		return ErrRouter
	}
	return nil
}

// LoadError is a failure of one app entry at one pipeline stage.
type LoadError struct {
	Entry string
	Stage Stage
	Err   error
}

// NewLoadError tags err with the entry and stage it occurred at.
func NewLoadError(entry string, stage Stage, err error) *LoadError {
	return &LoadError{Entry: entry, Stage: stage, Err: err}
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load app %q at stage %q: %v", e.Entry, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's stage.
func (e *LoadError) Is(target error) bool {
	s := e.Stage.sentinel()
	return s != nil && target == s
}

// ValidationError lists every rule a structured check violated.
type ValidationError struct {
	Subject    string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Subject, strings.Join(e.Violations, "; "))
}

// MigrationError is a failed schema operation for one app or the core.
type MigrationError struct {
	App string
	Op  string
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed for %s: %v", e.Op, e.App, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or malformed project configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid project configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
