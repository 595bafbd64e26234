package helpers

import (
	"fmt"
	"log/slog"

	"github.com/vinodhalaharvi/formulac/diag"
)

// Func is a helper method declared by a DSL class.
type Func struct {
	Name string
	Body string
}

// LowerFunc lowers one method body. lowered holds the finished bodies of
// every helper the body may call.
type LowerFunc func(body string, lowered map[string]string) (string, error)

// Inline lowers every helper with its callees first and returns the lowered
// bodies by name. The formula body is lowered afterwards by the caller with
// the returned map.
func Inline(funcs []Func, lower LowerFunc, logger *slog.Logger) (map[string]string, error) {
	log := diag.OrDiscard(logger)
	bodies := make(map[string]string, len(funcs))
	for _, f := range funcs {
		if _, dup := bodies[f.Name]; dup {
			return nil, fmt.Errorf("helper %s declared twice", f.Name)
		}
		bodies[f.Name] = f.Body
	}
	known := func(name string) bool {
		_, ok := bodies[name]
		return ok
	}

	g := newGraph()
	for _, f := range funcs {
		callees, err := calls(f.Body, known)
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", f.Name, err)
		}
		g.add(f.Name, callees)
	}
	order, err := g.order()
	if err != nil {
		return nil, err
	}

	lowered := make(map[string]string, len(funcs))
	for _, name := range order {
		body, err := lower(bodies[name], lowered)
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", name, err)
		}
		lowered[name] = body
		log.Debug("inlined helper", "name", name, "calls", g.edges[name], "body", body)
	}
	return lowered, nil
}
