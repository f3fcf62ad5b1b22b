// Package tools implements the concrete tool executors spec.md §4.2
// names, each a registry.Executor whose Handle reports one
// convo.ValidatedKind; several share a kind (read_file, grep and a
// root-level complete_task all report VNoOp). Each adapts a
// handler from the teacher's internal/mcptools into the two-phase
// registry.Executor/Handle contract, so a tool's user-facing
// description of what it's about to do (ToolRequest) is available
// before Execute performs any side effect.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validatePath resolves file against the current working directory,
// rejecting any path that would escape it. Grounded on the teacher's
// mcptools.validatePath/validatePathWithRoot.
func validatePath(file string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return validatePathWithRoot(file, wd)
}

func validatePathWithRoot(file, root string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root path: %w", err)
	}
	var absPath string
	if filepath.IsAbs(file) {
		absPath = file
	} else {
		absPath = filepath.Join(rootAbs, file)
	}
	absPath, err = filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	rel, err := filepath.Rel(rootAbs, absPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("access denied: path %q is outside the working directory", file)
	}
	return absPath, nil
}
