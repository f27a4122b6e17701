// Package discovery walks a directory tree to find and classify the Python
// source files an analysis run should consider.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs lists directory names that are skipped entirely (never walked
// into, never recorded).
var skipDirs = map[string]bool{
	".git":        true,
	"__pycache__": true,
	"node_modules": true,
	".venv":       true,
	"venv":        true,
	"env":         true,
	".mypy_cache": true,
	".pytest_cache": true,
	".tox":        true,
	"dist":        true,
	"build":       true,
	"testdata":    true,
}

// vendoredDirNames lists directory names that are walked into (so their
// files are still counted) but whose .py files are recorded as excluded
// rather than scheduled for analysis.
var vendoredDirNames = map[string]bool{
	"site-packages": true,
	"vendor":        true,
	"third_party":   true,
}

// DiscoveredFile is one .py file found under the scan root.
type DiscoveredFile struct {
	Path          string // absolute filesystem path
	RelPath       string // relative to the scan root, slash-separated semantics preserved via filepath
	Class         FileClass
	ExcludeReason string // set when Class == ClassExcluded
}

// ScanResult summarizes one Discover call.
type ScanResult struct {
	RootDir        string
	Files          []DiscoveredFile
	TotalFiles     int
	SourceCount    int
	TestCount      int
	GeneratedCount int
	VendoredCount  int
	GitignoreCount int
	SkippedCount   int
	SymlinkCount   int
}

// SourceFiles returns the subset of Files classified as analyzable source
// (excludes tests, generated files, and excluded files) unless
// includeTests is set.
func (r *ScanResult) SourceFiles(includeTests bool) []DiscoveredFile {
	var out []DiscoveredFile
	for _, f := range r.Files {
		switch f.Class {
		case ClassSource:
			out = append(out, f)
		case ClassTest:
			if includeTests {
				out = append(out, f)
			}
		}
	}
	return out
}

// Walker discovers and classifies Python source files in a directory tree.
type Walker struct{}

// NewWalker creates a new Walker instance.
func NewWalker() *Walker {
	return &Walker{}
}

// Discover walks rootDir recursively, finds all .py files, classifies them,
// and returns a ScanResult with file lists and counts.
func (w *Walker) Discover(rootDir string) (*ScanResult, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	result := &ScanResult{RootDir: rootDir}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			result.SkippedCount++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			fmt.Fprintf(os.Stderr, "warning: skipping symlink %s\n", path)
			result.SymlinkCount++
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == rootDir {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		if filepath.Ext(name) != ".py" {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: failed to compute relative path: %v\n", path, err)
			result.SkippedCount++
			return nil
		}

		file := DiscoveredFile{Path: path, RelPath: relPath}

		if inVendoredDir(relPath) {
			file.Class = ClassExcluded
			file.ExcludeReason = "vendored"
			result.Files = append(result.Files, file)
			result.VendoredCount++
			result.TotalFiles++
			return nil
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			file.Class = ClassExcluded
			file.ExcludeReason = "gitignore"
			result.Files = append(result.Files, file)
			result.GitignoreCount++
			result.TotalFiles++
			return nil
		}

		generated, err := isGeneratedFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: failed to check generated status: %v\n", relPath, err)
			result.SkippedCount++
			return nil
		}
		if generated {
			file.Class = ClassGenerated
			result.Files = append(result.Files, file)
			result.GeneratedCount++
			result.TotalFiles++
			return nil
		}

		file.Class = classifyPythonFile(name)
		result.Files = append(result.Files, file)
		result.TotalFiles++

		switch file.Class {
		case ClassSource:
			result.SourceCount++
		case ClassTest:
			result.TestCount++
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return result, nil
}

// inVendoredDir reports whether any path component names a vendored
// third-party directory.
func inVendoredDir(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if vendoredDirNames[part] {
			return true
		}
	}
	return false
}
