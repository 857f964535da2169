package phase

import (
	"context"
	"errors"
	"testing"
)

// --- Fakes ---

type fakeBranches struct{ branch string }

func (f fakeBranches) CurrentBranch(context.Context, string) string { return f.branch }

type fakeFeatures struct {
	dir   string
	err   error
	calls int
}

func (f *fakeFeatures) FeatureDir(context.Context, string) (string, error) {
	f.calls++
	return f.dir, f.err
}

type fakeProber struct {
	present ArtifactSet
	probed  []Document
}

func (f *fakeProber) Exists(_ string, doc Document) bool {
	f.probed = append(f.probed, doc)
	return f.present.Has(doc)
}

// --- Inspect ---

func TestInspect_NonFeatureBranch_SkipsResolution(t *testing.T) {
	features := &fakeFeatures{dir: "/never"}
	prober := &fakeProber{}
	in := NewInspector(NewEngine(true), fakeBranches{"main"}, features, prober)

	got, err := in.Inspect(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if got.Phase != Specify {
		t.Errorf("Phase = %s, want specify", got.Phase)
	}
	if got.Branch != "main" {
		t.Errorf("Branch = %s, want main", got.Branch)
	}
	if got.Message == "" {
		t.Error("Message should explain the missing feature branch")
	}
	if features.calls != 0 {
		t.Errorf("feature resolver called %d times, want 0", features.calls)
	}
	if len(prober.probed) != 0 {
		t.Errorf("prober called for %v, want no probes", prober.probed)
	}
}

func TestInspect_FeatureBranch_ProbesEveryDocument(t *testing.T) {
	features := &fakeFeatures{dir: "/repo/specs/003-auth"}
	prober := &fakeProber{present: NewArtifactSet(DocSpec, DocResearch)}
	in := NewInspector(NewEngine(false), fakeBranches{"003-auth"}, features, prober)

	got, err := in.Inspect(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(prober.probed) != len(AllDocuments) {
		t.Errorf("probed %d documents, want %d", len(prober.probed), len(AllDocuments))
	}
	if got.Phase != Plan {
		t.Errorf("Phase = %s, want plan", got.Phase)
	}
	if got.FeatureDir != "/repo/specs/003-auth" {
		t.Errorf("FeatureDir = %s", got.FeatureDir)
	}
	if len(got.Docs) != 2 || got.Docs[0] != DocSpec || got.Docs[1] != DocResearch {
		t.Errorf("Docs = %v, want [spec.md research.md]", got.Docs)
	}
}

func TestInspect_ResolutionFailurePropagates(t *testing.T) {
	cause := errors.New("check-prerequisites.sh: exit status 1")
	in := NewInspector(NewEngine(false), fakeBranches{"004-x"}, &fakeFeatures{err: cause}, &fakeProber{})

	got, err := in.Inspect(context.Background(), "/repo")
	if err == nil {
		t.Fatal("Inspect should fail when the feature directory cannot be resolved")
	}
	if !errors.Is(err, cause) {
		t.Errorf("error should wrap the resolver cause, got: %v", err)
	}
	if got != nil {
		t.Errorf("Inspection = %+v, want nil on error", got)
	}
}

func TestInspect_RecomputesEveryCall(t *testing.T) {
	prober := &fakeProber{present: NewArtifactSet(DocSpec)}
	in := NewInspector(NewEngine(false), fakeBranches{"012-search"}, &fakeFeatures{dir: "/d"}, prober)

	first, _ := in.Inspect(context.Background(), "/repo")
	if first.Phase != Plan {
		t.Fatalf("first Phase = %s, want plan", first.Phase)
	}

	prober.present.Add(DocPlan)
	prober.present.Add(DocTasks)
	second, _ := in.Inspect(context.Background(), "/repo")
	if second.Phase != Implement {
		t.Errorf("second Phase = %s, want implement", second.Phase)
	}
	if len(second.ReadyFor) != 1 || second.ReadyFor[0] != Implement {
		t.Errorf("second ReadyFor = %v, want [implement]", second.ReadyFor)
	}
}
