package helpers

import (
	"fmt"
	"log/slog"

	"github.com/vinodhalaharvi/formulac/diag"
)

// Prefix is the name stem of extracted helpers.
const Prefix = "func"

// Name returns the helper name with index n, such as func1.
func Name(n int) string { return fmt.Sprintf("%s%d", Prefix, n) }

// Helper is an extracted helper method: a name and a DSL statement body.
type Helper struct {
	Name string
	Body string
}

// Extract finishes the helpers the reverse renderer registered while
// rendering root. Helpers with the same body after their own calls are
// resolved merge into the first one seen; the survivors are renumbered
// densely with callees always below their callers. The rewritten root is
// returned with the helpers in emission order, highest index first.
func Extract(root string, registered []Helper, logger *slog.Logger) (string, []Helper, error) {
	log := diag.OrDiscard(logger)
	bodies := make(map[string]string, len(registered))
	for _, h := range registered {
		if _, dup := bodies[h.Name]; dup {
			return "", nil, fmt.Errorf("helper %s registered twice", h.Name)
		}
		bodies[h.Name] = h.Body
	}
	known := func(name string) bool {
		_, ok := bodies[name]
		return ok
	}

	g := newGraph()
	for _, h := range registered {
		callees, err := calls(h.Body, known)
		if err != nil {
			return "", nil, fmt.Errorf("helper %s: %w", h.Name, err)
		}
		g.add(h.Name, callees)
	}
	order, err := g.order()
	if err != nil {
		return "", nil, err
	}

	// Bottom-up: callees are canonical before their callers are compared.
	merged := make(map[string]string)
	seen := make(map[string]string)
	var kept []string
	for _, name := range order {
		body, err := renameCalls(bodies[name], merged)
		if err != nil {
			return "", nil, err
		}
		if first, ok := seen[body]; ok {
			merged[name] = first
			log.Debug("merged helper", "name", name, "into", first)
			continue
		}
		seen[body] = name
		bodies[name] = body
		kept = append(kept, name)
	}

	final := make(map[string]string, len(order))
	for i, name := range kept {
		final[name] = Name(i + 1)
	}
	for from, to := range merged {
		final[from] = final[to]
	}

	out := make([]Helper, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		body, err := renameCalls(bodies[kept[i]], final)
		if err != nil {
			return "", nil, err
		}
		out = append(out, Helper{Name: final[kept[i]], Body: body})
	}
	root, err = renameCalls(root, final)
	if err != nil {
		return "", nil, err
	}
	log.Debug("extracted helpers", "registered", len(registered), "kept", len(kept))
	return root, out, nil
}
