package polisher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jjtimmons/conseq/config"
	"github.com/jjtimmons/conseq/internal/stitch"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile(%s): %v", name, err)
	}
	return path
}

// TestRun_IdentityPolish reproduces spec §8 scenario 2: a target
// polished by one identical, full-length, zero-error query overlap
// should come back unchanged, fully covered and fully polished.
func TestRun_IdentityPolish(t *testing.T) {
	dir := t.TempDir()
	targets := writeFile(t, dir, "targets.fasta", ">T\nAAAAAAAAAA\n")
	queries := writeFile(t, dir, "queries.fasta", ">Q\nAAAAAAAAAA\n")
	overlaps := writeFile(t, dir, "overlaps.paf",
		"Q\t10\t0\t10\t+\tT\t10\t0\t10\t10\t10\t60\n")

	cfg := config.Config{
		TargetsPath:  targets,
		QueriesPath:  queries,
		OverlapsPath: overlaps,
		Type:         config.TypeFragment,
		WindowLength: 4,
		Match:        3,
		Mismatch:     -5,
		Gap:          -4,
		NumThreads:   1,
		ErrorThreshold: 1,
	}

	outputs, err := Run(cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("len(outputs) = %d, want 1", len(outputs))
	}
	if outputs[0].Data != "AAAAAAAAAA" {
		t.Fatalf("Data = %q, want %q", outputs[0].Data, "AAAAAAAAAA")
	}
	wantName := "T r LN:i:10 RC:i:1 XC:f:1.000000"
	if outputs[0].Name != wantName {
		t.Fatalf("Name = %q, want %q", outputs[0].Name, wantName)
	}
}

func TestTagName_ContigModeOmitsRTag(t *testing.T) {
	r := stitch.Result{Length: 10, Coverage: 2, PolishedRatio: 0.5}
	got := tagName("contig1", config.TypeContig, r)
	want := "contig1 LN:i:10 RC:i:2 XC:f:0.500000"
	if got != want {
		t.Fatalf("tagName() = %q, want %q", got, want)
	}
}

func TestTagName_FragmentModeAddsRTag(t *testing.T) {
	r := stitch.Result{Length: 4, Coverage: 1, PolishedRatio: 1}
	got := tagName("read1", config.TypeFragment, r)
	want := "read1 r LN:i:4 RC:i:1 XC:f:1.000000"
	if got != want {
		t.Fatalf("tagName() = %q, want %q", got, want)
	}
}
