// Where: cli/internal/infra/cimatrix/cimatrix.go
// What: Active product versions derived from the CI build-matrix file.
// Why: The CI file's variables list is the source of truth for what gets released.
package cimatrix

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poruru/release-sweep/cli/internal/domain/version"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const variablesKey = "variables"

// ConfigurationError reports a build-matrix file that cannot yield versions.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build matrix %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("build matrix %s: %s", e.Path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Deriver reads the CI configuration.
type Deriver struct {
	Logger   *zap.Logger
	ReadFile func(string) ([]byte, error)
}

// ActiveProductVersions is Deriver{}.ActiveProductVersions.
func ActiveProductVersions(path string) ([]string, error) {
	return Deriver{}.ActiveProductVersions(path)
}

// ActiveProductVersions returns the semver string scalars of the top-level
// variables sequence, deduplicated and ascending. Any other entry is skipped.
// An unreadable file or an empty result is a ConfigurationError.
func (d Deriver) ActiveProductVersions(path string) ([]string, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	readFile := d.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	data, err := readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{Path: path, Reason: "file not found", Err: err}
		}
		return nil, &ConfigurationError{Path: path, Reason: "read failed", Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "invalid YAML", Err: err}
	}

	variables, err := findVariables(&doc)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: err.Error()}
	}

	var candidates []string
	for _, item := range variables.Content {
		value, ok := stringScalar(item)
		if !ok {
			logger.Debug("skip non-string variable", zap.String("kind", describeNode(item)))
			continue
		}
		if !version.IsValid(value) {
			logger.Debug("skip non-semver variable", zap.String("value", value))
			continue
		}
		candidates = append(candidates, strings.TrimSpace(value))
	}

	versions := version.FilterValid(candidates)
	if len(versions) == 0 {
		return nil, &ConfigurationError{
			Path:   path,
			Reason: "no valid product versions in variables list (expected semver strings like 6.0.27, 7.0.19)",
		}
	}
	version.SortAscending(versions)
	return versions, nil
}

func findVariables(doc *yaml.Node) (*yaml.Node, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("document is empty")
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != variablesKey {
			continue
		}
		value := resolveAlias(root.Content[i+1])
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%q is not a list", variablesKey)
		}
		if len(value.Content) == 0 {
			return nil, fmt.Errorf("%q list is empty", variablesKey)
		}
		return value, nil
	}
	return nil, fmt.Errorf("no %q list found", variablesKey)
}

// stringScalar returns the value of a scalar tagged as a string. Anchored
// variables (`- &om70 7.0.19`) are plain scalars with an anchor and count too.
func stringScalar(node *yaml.Node) (string, bool) {
	node = resolveAlias(node)
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	if node.ShortTag() != "!!str" {
		return "", false
	}
	return node.Value, true
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func describeNode(node *yaml.Node) string {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		return node.ShortTag()
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	default:
		return "unknown"
	}
}
