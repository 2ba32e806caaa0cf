// Package gitsync keeps the repository directory in step with its git remote.
package gitsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommitMessage is used for every commit created by Publish.
const CommitMessage = "Floccus bookmarks update"

// Syncer is the git collaborator of the bookmark service.
type Syncer interface {
	// Prepare makes the working copy current: clone when absent, pull otherwise.
	Prepare(ctx context.Context) error
	// Publish records file (relative to the working copy) and pushes it.
	Publish(ctx context.Context, file string) error
	// HasRemote reports whether Publish has somewhere to push to.
	HasRemote() bool
}

// Nop is a Syncer for a plain local directory.
type Nop struct{}

func (Nop) Prepare(context.Context) error         { return nil }
func (Nop) Publish(context.Context, string) error { return nil }
func (Nop) HasRemote() bool                       { return false }

// Git drives the git binary.
type Git struct {
	dir    string
	url    string
	remote string
	branch string
	binary string
	logger *slog.Logger
}

// Option configures a Git syncer.
type Option func(*Git)

// WithRemote overrides the remote name (default "origin").
func WithRemote(name string) Option { return func(g *Git) { g.remote = name } }

// WithBranch overrides the branch that is pulled and pushed (default "main").
func WithBranch(name string) Option { return func(g *Git) { g.branch = name } }

// WithBinary overrides the git executable.
func WithBinary(path string) Option { return func(g *Git) { g.binary = path } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(g *Git) { g.logger = l } }

// New returns a syncer for the working copy at dir. url may be empty for a
// repository that is only used locally.
func New(dir, url string, opts ...Option) *Git {
	g := &Git{
		dir:    dir,
		url:    url,
		remote: "origin",
		branch: "main",
		binary: "git",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// HasRemote reports whether a repository URL is configured.
func (g *Git) HasRemote() bool { return g.url != "" }

// Prepare clones the remote when the working copy is missing, and pulls
// when it is a git checkout with the remote configured. A plain directory
// is left alone.
func (g *Git) Prepare(ctx context.Context) error {
	if _, err := os.Stat(g.dir); errors.Is(err, fs.ErrNotExist) {
		if g.url == "" {
			return fmt.Errorf("gitsync: %s does not exist and no repository url is configured", g.dir)
		}
		if err := os.MkdirAll(filepath.Dir(g.dir), 0o755); err != nil {
			return fmt.Errorf("gitsync: mkdir: %w", err)
		}
		g.logger.Info("cloning repository", "url", g.url, "dir", g.dir)
		_, err := g.run(ctx, filepath.Dir(g.dir), "clone", "--branch", g.branch, "--origin", g.remote, g.url, g.dir)
		return err
	} else if err != nil {
		return fmt.Errorf("gitsync: stat %s: %w", g.dir, err)
	}

	if _, err := os.Stat(filepath.Join(g.dir, ".git")); err != nil {
		g.logger.Debug("not a git checkout, skipping pull", "dir", g.dir)
		return nil
	}
	if _, err := g.run(ctx, g.dir, "config", "--get", "remote."+g.remote+".url"); err != nil {
		g.logger.Debug("no remote configured, skipping pull", "remote", g.remote)
		return nil
	}
	g.logger.Info("pulling repository", "remote", g.remote, "branch", g.branch)
	_, err := g.run(ctx, g.dir, "pull", "--no-rebase", g.remote, g.branch)
	return err
}

// Publish stages file, commits it and pushes the branch. Nothing is
// committed or pushed when the file has no staged changes.
func (g *Git) Publish(ctx context.Context, file string) error {
	if _, err := g.run(ctx, g.dir, "add", "--", file); err != nil {
		return err
	}
	if _, err := g.run(ctx, g.dir, "diff", "--cached", "--quiet", "--", file); err == nil {
		g.logger.Info("no changes to publish", "file", file)
		return nil
	}
	if _, err := g.run(ctx, g.dir, "commit", "-m", CommitMessage, "--", file); err != nil {
		return err
	}
	g.logger.Info("pushing", "remote", g.remote, "branch", g.branch)
	_, err := g.run(ctx, g.dir, "push", g.remote, g.branch+":"+g.branch)
	return err
}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gitsync: git %s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
