// Package app implements the application layer for crate.
package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.DescriptorLoader
	sources   ports.SourceSelector
	resolver  ports.PatternResolver
	copier    ports.Copier
	hasher    ports.Hasher
	verifier  ports.Verifier
	store     ports.RecordStore
	telemetry ports.Telemetry
	logger    ports.Logger
	now       func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.DescriptorLoader,
	sources ports.SourceSelector,
	resolver ports.PatternResolver,
	copier ports.Copier,
	hasher ports.Hasher,
	verifier ports.Verifier,
	store ports.RecordStore,
	telemetry ports.Telemetry,
	log ports.Logger,
) *App {
	return &App{
		loader:    loader,
		sources:   sources,
		resolver:  resolver,
		copier:    copier,
		hasher:    hasher,
		verifier:  verifier,
		store:     store,
		telemetry: telemetry,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to timestamp package records.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// Options locate the descriptor and the working source tree.
type Options struct {
	// Dir is the working source tree. Defaults to the current directory.
	Dir string
	// Descriptor is the descriptor path. Defaults to crate.yaml inside Dir.
	Descriptor string
}

func (o Options) dir() string {
	if o.Dir == "" {
		return "."
	}
	return o.Dir
}

func (o Options) descriptor() string {
	if o.Descriptor == "" {
		return filepath.Join(o.dir(), domain.DefaultDescriptorFile)
	}
	return o.Descriptor
}

// SourceOptions configure the source step.
type SourceOptions struct {
	Options
	// Kind overrides the source variant declared by the descriptor.
	Kind string
}

// CreateOptions configure Create.
type CreateOptions struct {
	SourceOptions
	// Work is the checkout directory populated by the source step and read by the
	// package step. Defaults to Dir.
	Work string
}

// Info loads and validates the descriptor.
func (a *App) Info(_ context.Context, opts Options) (*domain.PackageMetadata, error) {
	return a.load(opts)
}

// Source runs the source step into dst.
func (a *App) Source(ctx context.Context, dst string, opts SourceOptions) error {
	meta, err := a.load(opts.Options)
	if err != nil {
		return err
	}
	return a.fetch(ctx, meta, dst, opts.Kind)
}

// Package runs the package step, copying the files selected by the descriptor rules
// from the working source tree into dst.
func (a *App) Package(ctx context.Context, dst string, opts Options) (*domain.PackageRecord, error) {
	meta, err := a.load(opts)
	if err != nil {
		return nil, err
	}
	return a.pack(ctx, meta, opts.dir(), dst)
}

// Create runs the source step into the work directory followed by the package step
// from it, stopping at the first error.
func (a *App) Create(ctx context.Context, dst string, opts CreateOptions) (*domain.PackageRecord, error) {
	meta, err := a.load(opts.Options)
	if err != nil {
		return nil, err
	}

	work := opts.Work
	if work == "" {
		work = opts.dir()
	}

	if err := a.fetch(ctx, meta, work, opts.Kind); err != nil {
		return nil, err
	}
	return a.pack(ctx, meta, work, dst)
}

// Export copies the files matching the export patterns into dst, preserving their layout.
// It returns the exported paths relative to dst.
func (a *App) Export(ctx context.Context, dst string, opts Options) ([]string, error) {
	meta, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	_, vertex := a.telemetry.Record(ctx, "export "+meta.ID())

	exported, err := a.export(meta, opts.dir(), dst, vertex)
	vertex.Complete(err)
	if err != nil {
		return nil, zerr.Wrap(err, "export failed")
	}

	a.logger.Info(fmt.Sprintf("exported %d files of %s into %s", len(exported), meta.ID(), dst))
	return exported, nil
}

// Verify checks that dst still holds exactly the content recorded by the last package run.
func (a *App) Verify(ctx context.Context, dst string, opts Options) (*domain.PackageRecord, error) {
	meta, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	record, err := a.store.Get(meta.ID())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotPackaged, "nothing to verify"), "id", meta.ID())
	}

	files := make([]string, 0, len(record.Files))
	for _, f := range record.Files {
		files = append(files, f.Path)
	}

	ok, err := a.verifier.VerifyFiles(dst, files)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageModified, "packaged files are missing"), "path", dst)
	}

	treeHash, _, err := a.hasher.HashTree(ctx, dst, files)
	if err != nil {
		return nil, err
	}
	if treeHash != record.TreeHash {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageModified, "packaged files were modified"), "path", dst)
	}

	a.logger.Info(fmt.Sprintf("%s in %s matches its record", meta.ID(), dst))
	return record, nil
}

func (a *App) load(opts Options) (*domain.PackageMetadata, error) {
	meta, err := a.loader.Load(opts.descriptor())
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load descriptor")
	}
	return meta, nil
}

func (a *App) fetch(ctx context.Context, meta *domain.PackageMetadata, dst, override string) error {
	kind := meta.Source.Kind
	if override != "" {
		parsed, err := domain.ParseSourceKind(override)
		if err != nil {
			return err
		}
		kind = parsed
	}

	src, err := a.sources.For(kind)
	if err != nil {
		return err
	}

	ctx, vertex := a.telemetry.Record(ctx, "source "+meta.ID())
	if kind == domain.SourceKindNone {
		vertex.Log(domain.LogLevelInfo, "source step is disabled")
		vertex.Cached()
		a.logger.Info(fmt.Sprintf("source step of %s is disabled", meta.ID()))
	}

	err = src.Fetch(ctx, meta, dst)
	vertex.Complete(err)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "source step failed"), "kind", string(kind))
	}

	if kind != domain.SourceKindNone {
		a.logger.Info(fmt.Sprintf("fetched %s sources of %s into %s", kind, meta.ID(), dst))
	}
	return nil
}

func (a *App) pack(ctx context.Context, meta *domain.PackageMetadata, root, dst string) (*domain.PackageRecord, error) {
	ctx, vertex := a.telemetry.Record(ctx, "package "+meta.ID())

	record, err := a.packInto(ctx, meta, root, dst, vertex)
	vertex.Complete(err)
	if err != nil {
		return nil, zerr.Wrap(err, "package step failed")
	}

	a.logger.Info(fmt.Sprintf("packaged %s into %s (%d files, %s)",
		meta.ID(), dst, len(record.Files), record.Status))
	return record, nil
}

//nolint:cyclop // orchestration function
func (a *App) packInto(
	ctx context.Context,
	meta *domain.PackageMetadata,
	root, dst string,
	vertex ports.Vertex,
) (*domain.PackageRecord, error) {
	if err := a.checkDestination(root, dst); err != nil {
		return nil, err
	}

	exclude := destinationPrefix(root, dst)

	// target path (relative to dst) -> source path (relative to root)
	plan := make(map[string]string)
	var targets []string
	for _, rule := range meta.Rules {
		matches, err := a.match(root, rule.Pattern, meta.Ignore, exclude)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			if rule.Optional {
				msg := "no file matches optional pattern " + rule.Pattern
				vertex.Log(domain.LogLevelWarn, msg)
				a.logger.Warn(msg)
				continue
			}
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingSource, "required pattern matched nothing"), "pattern", rule.Pattern)
		}

		for _, rel := range matches {
			target := rel
			if rule.Flatten {
				target = path.Base(rel)
			}
			target = path.Join(rule.Dst, target)
			if _, seen := plan[target]; !seen {
				targets = append(targets, target)
			}
			plan[target] = rel
		}
	}

	written := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := filepath.Join(root, filepath.FromSlash(plan[target]))
		changed, err := a.copier.CopyFile(src, filepath.Join(dst, filepath.FromSlash(target)))
		if err != nil {
			if !errors.Is(err, domain.ErrIO) {
				err = errors.Join(domain.ErrIO, err)
			}
			return nil, zerr.With(err, "file", plan[target])
		}
		if changed {
			written++
			vertex.Log(domain.LogLevelInfo, fmt.Sprintf("copied %s -> %s", plan[target], target))
		}
	}

	treeHash, files, err := a.hasher.HashTree(ctx, dst, targets)
	if err != nil {
		return nil, err
	}

	record := &domain.PackageRecord{
		ID:          meta.ID(),
		PURL:        meta.PURL(),
		Destination: absOrSelf(dst),
		Files:       files,
		TreeHash:    treeHash,
		Status:      domain.StepStatusCompleted,
		Timestamp:   a.now().UTC(),
	}

	// The record only feeds Verify and the unchanged status. Failing to read or
	// write it must not fail a package whose files are already in place.
	previous, err := a.store.Get(record.ID)
	if err != nil {
		a.logger.Warn("ignoring package records: " + err.Error())
	}
	if written == 0 && previous.SameContent(record) && previous.Destination == record.Destination {
		record.Status = domain.StepStatusUnchanged
		vertex.Cached()
	}

	if err := a.store.Put(*record); err != nil {
		a.logger.Warn("failed to save package record: " + err.Error())
	}
	return record, nil
}

func (a *App) export(meta *domain.PackageMetadata, root, dst string, vertex ports.Vertex) ([]string, error) {
	if err := a.checkDestination(root, dst); err != nil {
		return nil, err
	}

	exclude := destinationPrefix(root, dst)

	var files []string
	for _, pattern := range meta.ExportPatterns {
		matches, err := a.match(root, pattern, meta.Ignore, exclude)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingSource, "export pattern matched nothing"), "pattern", pattern)
		}
		files = append(files, matches...)
	}

	exported := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, rel := range files {
		if seen[rel] {
			continue
		}
		seen[rel] = true

		local := filepath.FromSlash(rel)
		changed, err := a.copier.CopyFile(filepath.Join(root, local), filepath.Join(dst, local))
		if err != nil {
			if !errors.Is(err, domain.ErrIO) {
				err = errors.Join(domain.ErrIO, err)
			}
			return nil, zerr.With(err, "file", rel)
		}
		if changed {
			vertex.Log(domain.LogLevelInfo, "exported "+rel)
		}
		exported = append(exported, rel)
	}
	return exported, nil
}

// checkDestination rejects a destination that is the source tree itself and makes sure
// dst can be written.
func (a *App) checkDestination(root, dst string) error {
	if absOrSelf(root) == absOrSelf(dst) {
		return zerr.With(zerr.Wrap(domain.ErrIO, "destination is the source tree"), "path", dst)
	}
	return a.copier.EnsureWritable(dst)
}

// match resolves pattern and drops files living below the excluded prefix.
func (a *App) match(root, pattern string, ignores []string, exclude string) ([]string, error) {
	matches, err := a.resolver.Match(root, pattern, ignores)
	if err != nil {
		return nil, err
	}
	if exclude == "" {
		return matches, nil
	}

	kept := matches[:0]
	for _, m := range matches {
		if m == exclude || strings.HasPrefix(m, exclude+"/") {
			continue
		}
		kept = append(kept, m)
	}
	return kept, nil
}

// destinationPrefix returns dst relative to root in slash form when dst lies strictly
// inside root, and "" otherwise.
func destinationPrefix(root, dst string) string {
	rel, err := filepath.Rel(absOrSelf(root), absOrSelf(dst))
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return ""
	}
	return filepath.ToSlash(rel)
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
