package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitgraph/backend/internal/graph"
	"fitgraph/backend/pkg/config"
)

// fakeStore is an in-memory demo store
type fakeStore struct {
	products    map[string]graph.Product
	constraints map[string][]string
	resets      int
	closed      bool
}

func (f *fakeStore) ResetAndSeed(ctx context.Context, catalog []graph.Product) error {
	f.resets++
	f.products = make(map[string]graph.Product)
	f.constraints = make(map[string][]string)
	for _, p := range catalog {
		f.products[p.ID] = p
	}
	return nil
}

func (f *fakeStore) RecordConstraint(ctx context.Context, userID, productID, constraint, reason string) error {
	f.constraints[userID] = append(f.constraints[userID], constraint)
	return nil
}

func (f *fakeStore) EvaluateConflict(ctx context.Context, userID, productID string) (*graph.Verdict, error) {
	var product *graph.Product
	if p, ok := f.products[productID]; ok {
		product = &p
	}
	return graph.Evaluate(userID, productID, product, f.constraints[userID]), nil
}

func (f *fakeStore) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

// useFakeStore swaps the demo store for the duration of the test
func useFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("LIVE_MEMMACHINE", "")

	store := &fakeStore{}
	orig := connectDemoStore
	connectDemoStore = func(ctx context.Context, cfg *config.Config) (demoStore, error) {
		return store, nil
	}
	t.Cleanup(func() { connectDemoStore = orig })
	return store
}

func TestIsAutoMode(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"--auto"}, true},
		{[]string{"-a"}, true},
		{[]string{"--yes"}, true},
		{[]string{"-y"}, true},
		{[]string{"--user", "u1"}, false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd := newRootCmd(strings.NewReader(""), &bytes.Buffer{})
			require.NoError(t, cmd.ParseFlags(tt.args))
			assert.Equal(t, tt.want, isAutoMode(cmd))
		})
	}
}

func TestExecute_MissingPassword(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "")

	for _, args := range [][]string{{"--auto"}, {"reset", "--yes"}, {"serve"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := execute(context.Background(), args, strings.NewReader(""), &out, &errOut)

			assert.Equal(t, 1, code)
			assert.Contains(t, errOut.String(), "ERROR:")
			assert.Contains(t, errOut.String(), "NEO4J_PASSWORD")
			assert.Empty(t, out.String(), "nothing runs before configuration is valid")
		})
	}
}

func TestExecute_ResetAborted(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_URI", "neo4j://127.0.0.1:1")

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{"reset"}, strings.NewReader("no\n"), &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "(yes/no)")
	assert.Contains(t, out.String(), "Aborted.")
}

func TestExecute_UnreachableDatabase(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_URI", "neo4j://127.0.0.1:1")
	t.Setenv("NEO4J_TIMEOUT_SECONDS", "1")

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{"--auto"}, strings.NewReader(""), &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "Fatal error:")
	assert.NotContains(t, out.String(), "[NEO4J]")
}

func TestExecute_UnknownFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{"--bogus"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 1, code)
}

func TestExecute_InteractiveCancelled(t *testing.T) {
	store := useFakeStore(t)

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{}, strings.NewReader(""), &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "[1] Press ENTER")
	assert.Contains(t, out.String(), "Interrupted by user.")
	assert.NotContains(t, errOut.String(), "Fatal error")
	assert.Zero(t, store.resets, "nothing runs after cancellation")
	assert.True(t, store.closed)
}

func TestExecute_InteractiveCancelledMidway(t *testing.T) {
	store := useFakeStore(t)

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{}, strings.NewReader("\n"), &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, store.resets)
	assert.Contains(t, out.String(), "Interrupted by user.")
	assert.NotContains(t, out.String(), "STOP!")
	assert.True(t, store.closed)
}

func TestExecute_AutoDemo(t *testing.T) {
	store := useFakeStore(t)

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{"-y"}, strings.NewReader(""), &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "[AGENT] Stored constraint: Broad Shoulders")
	assert.Contains(t, out.String(), "STOP!")
	assert.Contains(t, out.String(), "HM Slim Fit Jacket")
	assert.True(t, store.closed)
}

func TestExecute_AutoDemoNoInsight(t *testing.T) {
	store := useFakeStore(t)

	var out, errOut bytes.Buffer
	code := execute(context.Background(), []string{"--auto", "--feedback", "wrong color, didn't like it"}, strings.NewReader(""), &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "nothing stored")
	assert.Contains(t, out.String(), "Green light!")
	assert.Empty(t, store.constraints)
}
