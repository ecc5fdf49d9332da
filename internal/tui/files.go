package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// candidateDirs are checked for uploads, in order
var candidateDirs = []string{"uploads", "inputs", "input", "files", "samples"}

// DiscoverInputFolders returns folders that might contain files to audit.
// Includes both top-level folders and their immediate subfolders.
func DiscoverInputFolders() []string {
	var folders []string

	for _, dir := range candidateDirs {
		if !DirExists(dir) {
			continue
		}
		folders = append(folders, dir)

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				folders = append(folders, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return folders
}

// DiscoverManifests finds descriptor manifests in the current directory and
// the candidate folders. Returns paths sorted by modification time (most
// recent first), limited to 10.
func DiscoverManifests() []string {
	patterns := []string{"*manifest*.yaml", "*manifest*.yml", "*manifest*.json", "files.yaml", "files.json"}

	fileSet := make(map[string]os.FileInfo)
	search := append([]string{"."}, candidateDirs...)
	for _, dir := range search {
		if !DirExists(dir) {
			continue
		}
		for _, pattern := range patterns {
			matches, _ := filepath.Glob(filepath.Join(dir, pattern))
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					fileSet[filepath.Clean(m)] = info
				}
			}
		}
	}

	type fileWithTime struct {
		path    string
		modTime int64
	}
	var files []fileWithTime
	for path, info := range fileSet {
		files = append(files, fileWithTime{path, info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime == files[j].modTime {
			return files[i].path < files[j].path
		}
		return files[i].modTime > files[j].modTime
	})

	result := make([]string, 0, 10)
	for i, f := range files {
		if i >= 10 {
			break
		}
		result = append(result, f.path)
	}
	return result
}

// IsManifest checks if a path looks like a descriptor manifest
func IsManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
