package workflow

import (
	"regexp"
	"strings"

	"swissarmyhammer/internal/errs"
)

var (
	mermaidFence   = regexp.MustCompile("(?s)```mermaid\\s*\\n(.*?)```")
	stateDeclRe    = regexp.MustCompile(`^state\s+(\S+)\s+<<(fork|join)>>\s*$`)
	transitionRe   = regexp.MustCompile(`^(\S+|\[\*\])\s*-->\s*(\S+|\[\*\])\s*(?::\s*(.*))?$`)
	inlineActionRe = regexp.MustCompile(`^(\S+)\s*:\s*(.+)$`)
)

// Parse parses a full Markdown document (or a standalone .mermaid file's
// content) into a Graph named name. Action text for a state is taken,
// in order of precedence, from an inline `State: action` line in the
// diagram (also accepted as a transition annotation,
// `A --> State : State: action`), or from a Markdown "## StateName"
// subsection appearing after the mermaid block.
func Parse(name, content string) (*Graph, error) {
	block := extractMermaidBlock(content)
	if block == "" {
		return nil, errs.New(errs.Parse, "workflow.Parse").WithID(name).
			WithHint("no ```mermaid stateDiagram-v2 block found")
	}

	g := &Graph{Name: name, States: make(map[string]*State)}
	forkCandidates := map[string]bool{}
	joinCandidates := map[string]bool{}

	ensure := func(n string) *State {
		if n == terminalMarker {
			return nil
		}
		s, ok := g.States[n]
		if !ok {
			s = &State{Name: n, Kind: StateNormal}
			g.States[n] = s
		}
		return s
	}

	lines := strings.Split(block, "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") || line == "stateDiagram-v2" || line == "stateDiagram" {
			continue
		}

		if m := stateDeclRe.FindStringSubmatch(line); m != nil {
			s := ensure(m[1])
			switch m[2] {
			case "fork":
				s.Kind = StateFork
				forkCandidates[m[1]] = true
			case "join":
				s.Kind = StateJoin
				s.JoinName = m[1]
				joinCandidates[m[1]] = true
			}
			continue
		}

		if m := transitionRe.FindStringSubmatch(line); m != nil {
			from, to, annotation := m[1], m[2], strings.TrimSpace(m[3])

			if from == terminalMarker {
				g.Initial = to
				ensure(to)
				continue
			}

			src := ensure(from)
			if to == terminalMarker {
				src.Transitions = append(src.Transitions, Transition{Target: terminalMarker, Guard: GuardAlways})
				continue
			}
			ensure(to)

			guard := GuardAlways
			predicate := ""
			action := ""
			switch {
			case annotation == "":
			case annotation == "OnSuccess":
				guard = GuardOnSuccess
			case annotation == "OnFailure":
				guard = GuardOnFailure
			default:
				if am := inlineActionRe.FindStringSubmatch(annotation); am != nil && am[1] == to {
					action = am[2]
				} else {
					guard = GuardPredicate
					predicate = annotation
				}
			}
			if action != "" {
				ensure(to).Action = action
			}

			src.Transitions = append(src.Transitions, Transition{Target: to, Guard: guard, Predicate: predicate})
			continue
		}

		if m := inlineActionRe.FindStringSubmatch(line); m != nil {
			if s := ensure(m[1]); s != nil {
				s.Action = strings.TrimSpace(m[2])
			}
			continue
		}
		// Unrecognized lines (comments, styling directives) are ignored
		// rather than failing the parse.
	}

	for name := range g.States {
		if len(g.States[name].Transitions) == 0 {
			g.States[name].Terminal = true
		}
		for _, t := range g.States[name].Transitions {
			if t.Target == terminalMarker {
				g.States[name].Terminal = true
			}
		}
	}

	attachActionSections(g, content)
	linkForksToJoins(g)

	if err := g.Validate(); err != nil {
		return nil, errs.Wrap(errs.Validation, "workflow.Parse", err).WithID(name)
	}
	return g, nil
}

func extractMermaidBlock(content string) string {
	if m := mermaidFence.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "stateDiagram") {
		return trimmed
	}
	return ""
}

var sectionHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(\S.*?)\s*$`)

// attachActionSections fills in Action for any state whose name matches a
// Markdown subsection heading below the diagram, without overwriting an
// action already set inline.
func attachActionSections(g *Graph, content string) {
	idx := sectionHeadingRe.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range idx {
		heading := strings.TrimSpace(content[loc[2]:loc[3]])
		s, ok := g.States[heading]
		if !ok || s.Action != "" {
			continue
		}
		start := loc[1]
		end := len(content)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		body := strings.TrimSpace(content[start:end])
		if body != "" {
			s.Action = body
		}
	}
}

// linkForksToJoins assigns each fork state's JoinName by walking its
// direct transition targets until a join state is reached, without
// crossing into a different fork's branches.
func linkForksToJoins(g *Graph) {
	for _, s := range g.States {
		if s.Kind != StateFork || s.JoinName != "" {
			continue
		}
		var found string
		for _, t := range s.Transitions {
			j := walkToJoin(g, t.Target, map[string]bool{})
			if j == "" {
				continue
			}
			if found == "" {
				found = j
			}
		}
		s.JoinName = found
	}
}

func walkToJoin(g *Graph, name string, visited map[string]bool) string {
	if visited[name] {
		return ""
	}
	visited[name] = true
	s, ok := g.States[name]
	if !ok {
		return ""
	}
	if s.Kind == StateJoin {
		return s.Name
	}
	for _, t := range s.Transitions {
		if t.Target == terminalMarker {
			continue
		}
		if j := walkToJoin(g, t.Target, visited); j != "" {
			return j
		}
	}
	return ""
}
