// Package input turns host-side paths and manifests into file descriptors.
// Only file names, sizes and modification times are read; contents never are.
package input

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tuannvm/fileaudit/internal/types"
)

// Input represents discovered input files
type Input struct {
	// IsDirectory indicates if input was a directory
	IsDirectory bool
	// Path is the original input path (file or directory), absolute
	Path string
	// Paths contains the absolute path of every discovered file
	Paths []string
	// Files holds one descriptor per path, named relative to Path
	Files []types.FileDescriptor
}

// Discover scans the input path and returns discovered input files.
// If path is a file, returns that single file.
// If path is a directory, walks it skipping hidden entries.
func Discover(path string) (*Input, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path not found: %w", err)
	}

	if !info.IsDir() {
		fd, err := describe(filepath.Base(absPath), info)
		if err != nil {
			return nil, err
		}
		return &Input{
			Path:  absPath,
			Paths: []string{absPath},
			Files: []types.FileDescriptor{fd},
		}, nil
	}

	paths, err := scanDirectory(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files found in %s", absPath)
	}

	in := &Input{IsDirectory: true, Path: absPath, Paths: paths}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		rel, err := filepath.Rel(absPath, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		fd, err := describe(filepath.ToSlash(rel), info)
		if err != nil {
			return nil, err
		}
		in.Files = append(in.Files, fd)
	}
	return in, nil
}

// DiscoverAll discovers every path and merges the results, dropping
// duplicates by name and size.
func DiscoverAll(paths []string) ([]types.FileDescriptor, error) {
	var files []types.FileDescriptor
	for _, p := range paths {
		in, err := Discover(p)
		if err != nil {
			return nil, err
		}
		files = append(files, in.Files...)
	}
	return Dedupe(files), nil
}

func describe(name string, info fs.FileInfo) (types.FileDescriptor, error) {
	return types.NewFileDescriptor(name, info.Size(), info.ModTime())
}

// scanDirectory recursively scans a directory for regular files
func scanDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we can't access
		}

		// Skip hidden directories
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort files for consistent ordering
	sort.Strings(files)
	return files, nil
}

// Dedupe drops later descriptors with the same name and size as an earlier
// one. Order is otherwise kept.
func Dedupe(files []types.FileDescriptor) []types.FileDescriptor {
	type key struct {
		name string
		size int64
	}
	seen := make(map[key]bool, len(files))
	out := make([]types.FileDescriptor, 0, len(files))
	for _, f := range files {
		k := key{f.Name, f.Size}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// Summary returns a human-readable summary of discovered inputs
func (i *Input) Summary() string {
	if !i.IsDirectory {
		return fmt.Sprintf("Input: %s (%s)", filepath.Base(i.Path), humanize.IBytes(uint64(i.Files[0].Size)))
	}
	return fmt.Sprintf("Input: %s (%s)", filepath.Base(i.Path), Describe(i.Files))
}

// Describe summarizes descriptors as "<n> files, <size>" with a breakdown
// by extension.
func Describe(files []types.FileDescriptor) string {
	var total int64
	byExt := make(map[string]int)
	for _, f := range files {
		total += f.Size
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext == "" {
			ext = "(none)"
		}
		byExt[ext]++
	}

	parts := make([]string, 0, len(byExt))
	for ext, count := range byExt {
		parts = append(parts, fmt.Sprintf("%d %s", count, ext))
	}
	sort.Strings(parts)

	noun := "files"
	if len(files) == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%s %s, %s: %s", humanize.Comma(int64(len(files))), noun, humanize.IBytes(uint64(total)), strings.Join(parts, ", "))
}
