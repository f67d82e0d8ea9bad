package fixtures

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// defaultIgnorePatterns are skipped in every fixture directory in
// addition to whatever the directory's own .gitignore names.
var defaultIgnorePatterns = []string{
	".git/",
	"*.md",
}

// taxonomyFileName is the reserved fragment name holding the edge
// taxonomy rather than seed-graph nodes/edges.
const taxonomyFileName = "edge_taxonomy.yaml"

// Walker discovers the *.yaml/*.yml fixture fragments under a directory,
// honoring a .gitignore at its root the way the rest of the corpus walks
// a source tree.
type Walker struct {
	root    string
	matcher gitignore.Matcher
}

// NewWalker builds a Walker rooted at dir, loading dir/.gitignore if
// present.
func NewWalker(dir string) (*Walker, error) {
	patterns, err := loadGitignore(dir)
	if err != nil {
		return nil, err
	}

	all := make([]gitignore.Pattern, 0, len(defaultIgnorePatterns)+len(patterns))
	for _, p := range defaultIgnorePatterns {
		all = append(all, gitignore.ParsePattern(p, nil))
	}
	all = append(all, patterns...)

	return &Walker{root: dir, matcher: gitignore.NewMatcher(all)}, nil
}

// GraphFragments returns the paths of every seed-graph fragment file
// under the walker's root, excluding edge_taxonomy.yaml.
func (w *Walker) GraphFragments() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isYAML(d.Name()) || d.Name() == taxonomyFileName {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		if w.matcher.Match(splitPath(relPath), false) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})

	return paths, err
}

// TaxonomyPath returns the path to edge_taxonomy.yaml under the walker's
// root, or "" if it does not exist.
func (w *Walker) TaxonomyPath() string {
	p := filepath.Join(w.root, taxonomyFileName)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func splitPath(path string) []string {
	return strings.Split(path, string(filepath.Separator))
}

func loadGitignore(root string) ([]gitignore.Pattern, error) {
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, nil
}
