// Package workdir locates the workspace an mfx command runs in, supporting
// shared workspaces via .mfx-root redirect files.
package workdir

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// MarkerDir holds the workspace settings and team config
	MarkerDir = ".mfx"
	rootFile  = ".mfx-root"
)

// ResolveWorkspace walks up from dir to the nearest directory containing a
// .mfx folder or a .mfx-root file. A .mfx-root file names the workspace to use
// instead, relative to the directory holding it. Returns dir and false when
// no workspace is found.
func ResolveWorkspace(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, false
	}
	for cur := abs; ; {
		if target, ok := readRootFile(cur); ok {
			return target, true
		}
		if fi, err := os.Stat(filepath.Join(cur, MarkerDir)); err == nil && fi.IsDir() {
			return cur, true
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir, false
		}
		cur = parent
	}
}

func readRootFile(dir string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(dir, rootFile))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), true
}

// SettingsPath returns the path of a settings file inside a workspace
func SettingsPath(root, name string) string {
	return filepath.Join(root, MarkerDir, name)
}
