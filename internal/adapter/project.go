// Package adapter contains filesystem and serialization adapters for the
// unityloc CLI.
package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// GameProject is the discovered layout of a game installation: the
// managed module plus the ordered container and bundle file lists the
// scan walks, module first.
type GameProject struct {
	Root    m.Path
	DataDir m.Path

	// ManagedModule is empty when the build carries no managed module.
	ManagedModule m.Path
	Containers    []m.Path
	Bundles       []m.Path
}

// Files returns the ordered scan list: module, then containers, then
// bundles.
func (p *GameProject) Files() []m.Path {
	files := make([]m.Path, 0, 1+len(p.Containers)+len(p.Bundles))
	if p.ManagedModule != "" {
		files = append(files, p.ManagedModule)
	}
	files = append(files, p.Containers...)
	files = append(files, p.Bundles...)
	return files
}

// ProjectWalker locates the game's data directory and enumerates
// candidate files. It hides direct os access so the domain layer can be
// tested against a fake.
type ProjectWalker interface {
	Discover(root m.Path) (*GameProject, error)
}

// LocalProjectWalker discovers projects on the local filesystem by
// sniffing file magics, so renamed or extension-less files still land in
// the right substrate.
type LocalProjectWalker struct{}

// NewLocalProjectWalker constructs a LocalProjectWalker.
func NewLocalProjectWalker() *LocalProjectWalker {
	return &LocalProjectWalker{}
}

// Discover walks root and classifies every regular file by magic.
// Raw resource-stream files (.resS) are excluded up front; they hold
// pixel data the text pipeline must never touch.
func (w *LocalProjectWalker) Discover(root m.Path) (*GameProject, error) {
	rootStr, err := filepath.Abs(string(root))
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(rootStr)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", rootStr)
	}

	project := &GameProject{Root: m.Path(rootStr), DataDir: m.Path(rootStr)}

	err = filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("error walking path", "path", path, "error", err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".resS") || strings.HasSuffix(path, ".resource") {
			return nil
		}

		kind, err := unity.SniffFile(path)
		if err != nil {
			slog.Warn("error sniffing file", "path", path, "error", err)
			return nil
		}

		switch kind {
		case unity.FileModule:
			if project.ManagedModule == "" {
				project.ManagedModule = m.Path(path)
			}
		case unity.FileContainer:
			project.Containers = append(project.Containers, m.Path(path))
		case unity.FileBundle:
			project.Bundles = append(project.Bundles, m.Path(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project: %w", err)
	}

	// Deterministic scan order regardless of filesystem enumeration.
	sort.Slice(project.Containers, func(i, j int) bool { return project.Containers[i] < project.Containers[j] })
	sort.Slice(project.Bundles, func(i, j int) bool { return project.Bundles[i] < project.Bundles[j] })

	if project.ManagedModule == "" && len(project.Containers) == 0 && len(project.Bundles) == 0 {
		return nil, fmt.Errorf("no scannable files under %s", rootStr)
	}

	return project, nil
}
