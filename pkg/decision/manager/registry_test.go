package manager

import (
	"errors"
	"testing"
	"time"

	"arsmedica/dendron/pkg/dtl/ast"
)

func testTree(name string) *Tree {
	return &Tree{
		Name: name,
		Root: ast.Question("What is the loan amount?",
			ast.Branch{Key: ast.ConditionKey("<", 1000), Child: ast.Leaf("Approved - small loan")},
			ast.Branch{Key: ast.ConditionKey(">=", 1000), Child: ast.Leaf("Manual review - large loan")},
		),
		SourceFile: name + ".yaml",
		LoadedAt:   time.Now(),
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewTreeRegistry()

	if err := registry.Register(testTree("loan")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tree, ok := registry.Get("loan")
	if !ok {
		t.Fatal("Get() did not find registered tree")
	}
	if tree.Name != "loan" {
		t.Errorf("Name = %q, want loan", tree.Name)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Get() found an unregistered tree")
	}

	if !registry.HasTree("loan") {
		t.Error("HasTree(loan) = false, want true")
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	registry := NewTreeRegistry()

	tests := []struct {
		name string
		tree *Tree
	}{
		{name: "nil tree", tree: nil},
		{name: "empty name", tree: &Tree{Root: ast.Leaf("Done")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.tree)
			if err == nil {
				t.Fatal("Register() succeeded, want error")
			}
			var regErr *RegistryError
			if !errors.As(err, &regErr) {
				t.Errorf("error type = %T, want *RegistryError", err)
			}
		})
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	registry := NewTreeRegistry()

	first := testTree("loan")
	second := testTree("loan")
	second.SourceFile = "override/loan.yaml"

	if err := registry.Register(first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(second); err != nil {
		t.Fatal(err)
	}

	tree, _ := registry.Get("loan")
	if tree.SourceFile != "override/loan.yaml" {
		t.Errorf("SourceFile = %q, want override/loan.yaml", tree.SourceFile)
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}
}

func TestRegistry_GetAllSorted(t *testing.T) {
	registry := NewTreeRegistry()
	for _, name := range []string{"triage", "loan", "visits"} {
		if err := registry.Register(testTree(name)); err != nil {
			t.Fatal(err)
		}
	}

	trees := registry.GetAll()
	if len(trees) != 3 {
		t.Fatalf("len(GetAll()) = %d, want 3", len(trees))
	}

	want := []string{"loan", "triage", "visits"}
	for i, tree := range trees {
		if tree.Name != want[i] {
			t.Errorf("GetAll()[%d].Name = %q, want %q", i, tree.Name, want[i])
		}
	}

	names := registry.GetTreeNames()
	for i, name := range names {
		if name != want[i] {
			t.Errorf("GetTreeNames()[%d] = %q, want %q", i, name, want[i])
		}
	}
}

func TestRegistry_Replace(t *testing.T) {
	registry := NewTreeRegistry()
	if err := registry.Register(testTree("loan")); err != nil {
		t.Fatal(err)
	}
	oldVersion := registry.GetVersion()

	if err := registry.Replace([]*Tree{testTree("triage"), testTree("visits")}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if registry.HasTree("loan") {
		t.Error("old tree still present after Replace()")
	}
	if !registry.HasTree("triage") || !registry.HasTree("visits") {
		t.Error("new trees missing after Replace()")
	}
	if registry.GetVersion() == oldVersion {
		t.Error("version unchanged after Replace()")
	}
	if registry.GetLoadTime().IsZero() {
		t.Error("load time not set after Replace()")
	}
}

func TestRegistry_ReplaceRejectsInvalidSet(t *testing.T) {
	registry := NewTreeRegistry()
	if err := registry.Register(testTree("loan")); err != nil {
		t.Fatal(err)
	}

	err := registry.Replace([]*Tree{testTree("triage"), {Root: ast.Leaf("Done")}})
	if err == nil {
		t.Fatal("Replace() succeeded with an invalid tree, want error")
	}

	// The failed replace must not disturb the active set.
	if !registry.HasTree("loan") {
		t.Error("active tree lost after failed Replace()")
	}
	if registry.HasTree("triage") {
		t.Error("partial set applied after failed Replace()")
	}
}

func TestRegistry_VersionDeterministic(t *testing.T) {
	a := NewTreeRegistry()
	b := NewTreeRegistry()

	trees := []*Tree{testTree("loan"), testTree("triage")}
	if err := a.Replace(trees); err != nil {
		t.Fatal(err)
	}
	if err := b.Replace([]*Tree{trees[1], trees[0]}); err != nil {
		t.Fatal(err)
	}

	if a.GetVersion() != b.GetVersion() {
		t.Errorf("version depends on insertion order: %q != %q", a.GetVersion(), b.GetVersion())
	}
	if len(a.GetVersion()) != 16 {
		t.Errorf("len(version) = %d, want 16", len(a.GetVersion()))
	}
}

func TestRegistry_GetMetadata(t *testing.T) {
	registry := NewTreeRegistry()
	if err := registry.Register(testTree("loan")); err != nil {
		t.Fatal(err)
	}

	metadata := registry.GetMetadata()
	if len(metadata) != 1 {
		t.Fatalf("len(GetMetadata()) = %d, want 1", len(metadata))
	}

	md := metadata[0]
	if md.Name != "loan" {
		t.Errorf("Name = %q, want loan", md.Name)
	}
	// Root question plus two leaves.
	if md.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", md.NodeCount)
	}
	if md.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", md.MaxDepth)
	}
}

func TestRegistry_Clear(t *testing.T) {
	registry := NewTreeRegistry()
	if err := registry.Register(testTree("loan")); err != nil {
		t.Fatal(err)
	}

	registry.Clear()

	if registry.Count() != 0 {
		t.Errorf("Count() = %d after Clear(), want 0", registry.Count())
	}
}

func TestTreeStats_SharedSubtree(t *testing.T) {
	shared := ast.Leaf("Done - shared outcome")
	root := ast.Question("first?",
		ast.Branch{Key: ast.LiteralKey("yes"), Child: shared},
		ast.Branch{Key: ast.LiteralKey("no"), Child: ast.Question("second?",
			ast.Branch{Key: ast.LiteralKey("yes"), Child: shared},
		)},
	)

	nodes, depth := treeStats(&Tree{Name: "shared", Root: root})
	if nodes != 3 {
		t.Errorf("nodes = %d, want 3 (shared leaf counted once)", nodes)
	}
	if depth != 3 {
		t.Errorf("depth = %d, want 3", depth)
	}
}
