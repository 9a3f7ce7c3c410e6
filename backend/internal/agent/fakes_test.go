package agent

import (
	"context"
	"sort"
	"sync"

	"fitgraph/backend/internal/extractor"
	"fitgraph/backend/internal/graph"
)

// memoryStore is an in-memory DemoStore that applies the same conflict rule
// as the Neo4j repository
type memoryStore struct {
	mu          sync.Mutex
	products    map[string]graph.Product
	constraints map[string]map[string]bool
	records     int

	resetErr  error
	recordErr error
	evalErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:    make(map[string]graph.Product),
		constraints: make(map[string]map[string]bool),
	}
}

func (m *memoryStore) ResetAndSeed(ctx context.Context, catalog []graph.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.products = make(map[string]graph.Product)
	m.constraints = make(map[string]map[string]bool)
	for _, p := range catalog {
		m.products[p.ID] = p
	}
	return nil
}

func (m *memoryStore) RecordConstraint(ctx context.Context, userID, productID, constraint, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	if m.constraints[userID] == nil {
		m.constraints[userID] = make(map[string]bool)
	}
	m.constraints[userID][constraint] = true
	m.records++
	return nil
}

func (m *memoryStore) EvaluateConflict(ctx context.Context, userID, productID string) (*graph.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.evalErr != nil {
		return nil, m.evalErr
	}

	var product *graph.Product
	if p, ok := m.products[productID]; ok {
		product = &p
	}

	var names []string
	for name := range m.constraints[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return graph.Evaluate(userID, productID, product, names), nil
}

func (m *memoryStore) userConstraints(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name := range m.constraints[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fixedExtractor returns a canned insight
type fixedExtractor struct {
	insight *extractor.Insight
	err     error
}

func (f fixedExtractor) Extract(ctx context.Context, userID, text string) (*extractor.Insight, error) {
	return f.insight, f.err
}

// scriptedPrompter fails on the n-th prompt (1-based), or never when failAt is 0
type scriptedPrompter struct {
	failAt  int
	err     error
	prompts []string
}

func (p *scriptedPrompter) Wait(ctx context.Context, prompt string) error {
	p.prompts = append(p.prompts, prompt)
	if p.failAt > 0 && len(p.prompts) == p.failAt {
		return p.err
	}
	return nil
}
