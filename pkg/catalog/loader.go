package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evanfield/guidepost/pkg/domain"
)

// rulesFile is the reserved name for the shared branch-rule list.
const rulesFile = "rules.yaml"

// languageDoc mirrors one language's YAML script file.
type languageDoc struct {
	Language string        `yaml:"language"`
	Nodes    []domain.Node `yaml:"nodes"`
}

// Load reads a script directory from disk. See LoadFS.
func Load(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS eagerly loads every *.yaml file at the root of fsys: rules.yaml
// becomes the branch-rule list, every other file one language's script.
// Loading is total; any structural problem (duplicate id, unparseable file,
// missing language tag) fails the whole load rather than surfacing later as
// a runtime branch.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read script directory: %w", err)
	}

	cat := &Catalog{languages: make(map[domain.Language]map[int]domain.Node)}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if name == rulesFile {
			rules, err := parseRules(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			cat.rules = rules
			continue
		}

		lang, script, err := parseLanguage(name, data)
		if err != nil {
			return nil, err
		}
		if _, exists := cat.languages[lang]; exists {
			return nil, domain.NewContentError(lang, 0, "language defined twice")
		}
		cat.languages[lang] = script
	}

	if len(cat.languages) == 0 {
		return nil, fmt.Errorf("no language scripts found")
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func parseLanguage(name string, data []byte) (domain.Language, map[int]domain.Node, error) {
	var doc languageDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	lang := domain.Language(doc.Language)
	if lang == "" {
		// Fall back to the file name so a stray file is still attributable.
		lang = domain.Language(strings.TrimSuffix(path.Base(name), ".yaml"))
		return lang, nil, domain.NewContentError(lang, 0, "missing language tag in %s", name)
	}

	script := make(map[int]domain.Node, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if node.ID <= 0 {
			return lang, nil, domain.NewContentError(lang, node.ID, "node id must be positive")
		}
		// Duplicate ids are a content-authoring bug, never last-wins.
		if _, dup := script[node.ID]; dup {
			return lang, nil, domain.NewContentError(lang, node.ID, "duplicate node id")
		}
		if len(node.Lines) == 0 {
			return lang, nil, domain.NewContentError(lang, node.ID, "node has no text lines")
		}
		script[node.ID] = node
	}
	return lang, script, nil
}
