// Where: cli/internal/infra/config/template.go
// What: Template rendering for image recipes and ledger keys.
// Why: Tags, build args, and object keys depend on the version being released.
package config

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/poruru/release-sweep/cli/internal/domain/version"
)

var templateCache sync.Map

// TemplateData is the value templates are executed against.
type TemplateData struct {
	Product      string
	Version      string
	AgentVersion string
	ToolsVersion string
	Context      string
	RunID        string
}

// RenderedImage is an ImageConfig with every template executed.
type RenderedImage struct {
	Repositories []string
	ContextDir   string
	Dockerfile   string
	Platform     string
	Tag          string
	BuildArgs    map[string]string
	Labels       map[string]string
}

// Render executes text as a sprig-enabled template.
func Render(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := loadTemplate(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %q: %w", text, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func loadTemplate(text string) (*template.Template, error) {
	if value, ok := templateCache.Load(text); ok {
		cached, ok := value.(*template.Template)
		if !ok {
			return nil, fmt.Errorf("template cache type mismatch for %q", text)
		}
		return cached, nil
	}
	tmpl, err := template.New("value").Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", text, err)
	}
	templateCache.Store(text, tmpl)
	return tmpl, nil
}

// Render executes every templated field of the image recipe.
func (c ImageConfig) Render(data TemplateData) (RenderedImage, error) {
	var err error
	out := RenderedImage{
		Repositories: append([]string(nil), c.Repositories...),
		Platform:     c.Platform,
	}
	if out.ContextDir, err = Render(c.Context, data); err != nil {
		return RenderedImage{}, err
	}
	if out.Dockerfile, err = Render(c.Dockerfile, data); err != nil {
		return RenderedImage{}, err
	}
	if out.Tag, err = Render(c.Tag, data); err != nil {
		return RenderedImage{}, err
	}
	if out.Tag == "" {
		return RenderedImage{}, fmt.Errorf("image tag rendered empty for %s %s", data.Product, data.Version)
	}
	if out.BuildArgs, err = renderMap(c.BuildArgs, data); err != nil {
		return RenderedImage{}, err
	}
	if out.Labels, err = renderMap(c.Labels, data); err != nil {
		return RenderedImage{}, err
	}
	return out, nil
}

func renderMap(values map[string]string, data TemplateData) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		rendered, err := Render(value, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = rendered
	}
	return out, nil
}

func validVersion(value string) bool {
	return version.IsValid(value)
}
