// Where: cli/internal/architecture/layering_cycles_test.go
// What: Import cycle guard for CLI internal packages.
// Why: The compiler rejects cycles late; this names the offending path.
package architecture

import (
	"path"
	"sort"
	"strings"
	"testing"
)

func TestNoInternalImportCycles(t *testing.T) {
	t.Parallel()

	graph := map[string][]string{}
	for _, file := range scanInternal(t) {
		pkg := path.Dir(file.rel)
		if pkg == "." {
			continue
		}
		for _, importPath := range file.imports {
			if strings.HasPrefix(importPath, internalImportPrefix) {
				graph[pkg] = append(graph[pkg], strings.TrimPrefix(importPath, internalImportPrefix))
			}
		}
	}
	if cycles := detectCycles(graph); len(cycles) > 0 {
		t.Fatalf("internal import cycles detected:\n%s", strings.Join(cycles, "\n"))
	}
}

func TestDetectCycles(t *testing.T) {
	t.Parallel()

	graph := map[string][]string{
		"command":       {"usecase/trim"},
		"usecase/trim":  {"domain/matrix"},
		"domain/matrix": {"usecase/trim"},
	}
	cycles := detectCycles(graph)
	if len(cycles) != 1 || cycles[0] != "usecase/trim -> domain/matrix -> usecase/trim" {
		t.Fatalf("unexpected cycles %v", cycles)
	}
	if got := detectCycles(map[string][]string{"a": {"b"}, "b": nil}); len(got) != 0 {
		t.Fatalf("acyclic graph reported %v", got)
	}
}

// detectCycles walks graph depth-first and reports every back edge as a path.
func detectCycles(graph map[string][]string) []string {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var stack []string
	seen := map[string]bool{}
	var cycles []string

	var visit func(string)
	visit = func(node string) {
		state[node] = visiting
		stack = append(stack, node)
		next := append([]string(nil), graph[node]...)
		sort.Strings(next)
		for _, dep := range next {
			switch state[dep] {
			case 0:
				visit(dep)
			case visiting:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] != dep {
						continue
					}
					cycle := strings.Join(append(append([]string(nil), stack[i:]...), dep), " -> ")
					if !seen[cycle] {
						seen[cycle] = true
						cycles = append(cycles, cycle)
					}
					break
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = done
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if state[node] == 0 {
			visit(node)
		}
	}
	sort.Strings(cycles)
	return cycles
}
