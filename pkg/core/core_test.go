package core

import (
	"context"
	"strings"
	"testing"
)

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if !strings.HasPrefix(id, "run-") {
		t.Fatalf("unexpected run id %q", id)
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Fatalf("expected existing run id to be reused")
	}
}

func TestAgentContextActivePersona(t *testing.T) {
	actx := &AgentContext{
		Personas:        []Persona{{ID: "p1", Name: "Casual"}, {ID: "p2", Name: "Formal"}},
		ActivePersonaID: "p2",
	}
	p, ok := actx.ActivePersona()
	if !ok || p.Name != "Formal" {
		t.Fatalf("expected Formal persona, got %+v (ok=%v)", p, ok)
	}

	actx.ActivePersonaID = "missing"
	if _, ok := actx.ActivePersona(); ok {
		t.Fatal("expected no persona for unknown id")
	}

	var nilCtx *AgentContext
	if nilCtx.HasPage() || nilCtx.HasSelection() {
		t.Fatal("nil context must not report page or selection")
	}
}

func TestIntentParam(t *testing.T) {
	in := Intent{Type: IntentCommand, Parameters: map[string]any{"query": "go"}}
	if v, ok := in.Param("query"); !ok || v != "go" {
		t.Fatalf("unexpected param: %v %v", v, ok)
	}
	if _, ok := (Intent{}).Param("query"); ok {
		t.Fatal("expected missing param on empty intent")
	}
}
