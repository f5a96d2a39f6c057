package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the XML files under opts.Paths as sorted absolute paths.
// A file named explicitly is kept when its name or its content identifies
// it as XML; files found by walking a directory must be identified by name.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := input
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			if explicitlyXML(absPath, opts) && filtered(absPath, workDir, opts) {
				add(absPath)
			}
			continue
		}

		found, err := walk(ctx, absPath, workDir, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	slices.Sort(files)
	return files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

func explicitlyXML(path string, opts Options) bool {
	if IsXMLPath(path, opts.Extensions) {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return IsXMLContent(head[:n])
}

func walk(ctx context.Context, root, workDir string, opts Options) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || matchesAny(relative(path, workDir), opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped.
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // Unreadable targets are skipped.
			}
			if info.IsDir() {
				if !opts.FollowSymlinks {
					return nil
				}
				sub, err := walk(ctx, target, workDir, opts)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if IsXMLPath(path, opts.Extensions) && filtered(path, workDir, opts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return files, nil
}

// filtered applies the include and exclude globs.
func filtered(path, workDir string, opts Options) bool {
	rel := relative(path, workDir)
	if matchesAny(rel, opts.ExcludeGlobs) {
		return false
	}
	return len(opts.IncludeGlobs) == 0 || matchesAny(rel, opts.IncludeGlobs)
}

func relative(path, workDir string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(rel, filepath.ToSlash(pattern)) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated relative path against a pattern.
// A pattern without a slash matches the base name. "**/" matches any
// number of leading directories and a trailing "/**" everything below a
// directory.
func matchGlob(rel, pattern string) bool {
	if rest, ok := strings.CutSuffix(pattern, "/**"); ok {
		return matchGlob(rel, rest) || matchPrefixDirs(rel, rest)
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		parts := strings.Split(rel, "/")
		for i := range parts {
			if matchGlob(strings.Join(parts[i:], "/"), rest) {
				return true
			}
		}
		return false
	}
	if pattern == "**" {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := filepath.Match(pattern, filepath.Base(filepath.FromSlash(rel)))
		return ok
	}
	ok, _ := filepath.Match(pattern, rel)
	return ok
}

// matchPrefixDirs reports whether some leading directory path of rel
// matches pattern.
func matchPrefixDirs(rel, pattern string) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if matchGlob(strings.Join(parts[:i], "/"), pattern) {
			return true
		}
	}
	return false
}
