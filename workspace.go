package workbench

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveWorkspace picks the trusted root directory for a collection. The
// explicit path wins if it resolves to an existing directory, then the
// environment-provided default (read by the caller at the process boundary),
// then the process owner's home directory. The home fallback never fails and
// is reported at warn level, not as an error.
func ResolveWorkspace(explicit, envDefault string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	for _, candidate := range []string{explicit, envDefault} {
		if candidate == "" {
			continue
		}
		p, err := expandUser(candidate)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs
		}
	}
	logger.Warn("invalid or no workspace specified, using home directory")
	home, err := os.UserHomeDir()
	if err != nil {
		// No resolvable home (stripped-down containers). The temp dir is the
		// last directory guaranteed to exist.
		return os.TempDir()
	}
	return home
}

// Sandbox resolves and validates file paths against one trusted root
// directory. A nil or empty extension list means no extension restriction;
// each collection sets its list explicitly.
type Sandbox struct {
	root string
	exts map[string]struct{}
}

// NewSandbox wraps root with the given extension allow-list. Extensions are
// matched case-insensitively and must include the leading dot.
func NewSandbox(root string, extensions ...string) *Sandbox {
	s := &Sandbox{root: filepath.Clean(root)}
	if len(extensions) > 0 {
		s.exts = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			s.exts[strings.ToLower(ext)] = struct{}{}
		}
	}
	return s
}

// Root returns the resolved workspace root.
func (s *Sandbox) Root() string { return s.root }

// Extensions returns the sorted allow-list, empty when unrestricted.
func (s *Sandbox) Extensions() []string {
	out := make([]string, 0, len(s.exts))
	for ext := range s.exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ValidateFilePath resolves a caller-supplied read path. Home shorthand is
// expanded; relative paths resolve against the workspace root, never the
// process working directory. The path must exist and, when the allow-list is
// non-empty, carry a listed extension. No side effects.
func (s *Sandbox) ValidateFilePath(name string) (string, error) {
	if name == "" {
		return "", Validationf("file path must not be empty")
	}
	p, err := expandUser(name)
	if err != nil {
		return "", Validationf("cannot expand %q: %v", name, err)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, p)
	}
	p = filepath.Clean(p)
	if _, err := os.Stat(p); err != nil {
		return "", NotFoundf("the file does not exist: %s", p)
	}
	if len(s.exts) > 0 {
		ext := strings.ToLower(filepath.Ext(p))
		if _, ok := s.exts[ext]; !ok {
			return "", UnsupportedTypef("unsupported file type %q, supported types: %s",
				ext, strings.Join(s.Extensions(), ", "))
		}
	}
	return p, nil
}

// SecureOutputPath resolves a caller-supplied write path. Absolute inputs are
// not honoured: leading separators are stripped and the remainder is
// re-anchored under the workspace. The cleaned result must stay inside (or
// equal) the workspace root or the operation is rejected before any I/O. On
// success the parent directory exists.
func (s *Sandbox) SecureOutputPath(name string) (string, error) {
	if name == "" {
		return "", Validationf("output path must not be empty")
	}
	candidate := name
	if filepath.IsAbs(candidate) {
		candidate = strings.TrimLeft(candidate, "/\\")
	}
	resolved := filepath.Join(s.root, candidate)
	if !s.Contains(resolved) {
		return "", SandboxViolationf("output path %q resolves outside the workspace", name)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", Internalf("cannot create output directory: %v", err)
	}
	return resolved, nil
}

// Contains reports whether path (already cleaned/absolute) is the workspace
// root or lies beneath it.
func (s *Sandbox) Contains(path string) bool {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// expandUser rewrites the "~" home shorthand. "~user" forms are not
// supported.
func expandUser(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/")), nil
	}
	return p, nil
}
