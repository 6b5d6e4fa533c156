// Package prompt discovers prompt definitions from the three layered
// roots (builtin < user < local) and resolves name collisions by
// precedence. Grounded on the teacher's internal/prompt/loader.go YAML
// frontmatter mechanics (parseYAMLFile shape); the teacher's actual
// AtomLoader solves prompt-atom/agent-context assembly, a different
// problem, and was not adapted — see DESIGN.md.
package prompt

// Layer identifies one of the three prompt discovery roots. Higher values
// take precedence when the same name is defined in more than one layer.
type Layer int

const (
	Builtin Layer = iota
	User
	Local
)

func (l Layer) String() string {
	switch l {
	case Builtin:
		return "builtin"
	case User:
		return "user"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// ArgumentSpec describes one declared prompt argument, per the data model.
type ArgumentSpec struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Required    bool    `yaml:"required"`
	Default     *string `yaml:"default"`
	Type        string  `yaml:"type"`
}

// Prompt is a discovered prompt definition: metadata from YAML front
// matter plus the remaining Markdown/Liquid body.
type Prompt struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	Arguments   []ArgumentSpec
	Body        string
	Layer       Layer
	SourcePath  string
}

// RequiredArgNames returns the names of this prompt's required arguments,
// for handing to the Template Engine's MissingArgument check.
func (p *Prompt) RequiredArgNames() []string {
	var names []string
	for _, a := range p.Arguments {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// Defaults returns a name->default map for arguments that declare one.
func (p *Prompt) Defaults() map[string]string {
	out := make(map[string]string)
	for _, a := range p.Arguments {
		if a.Default != nil {
			out[a.Name] = *a.Default
		}
	}
	return out
}
