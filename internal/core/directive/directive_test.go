package directive

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

const sampleDoc = "# Notes\n" +
	"```githubtracker\n" +
	"user: octocat\n" +
	"repo: hello\n" +
	"limit: 10\n" +
	"```\n" +
	"middle text\n" +
	"```githubtracker\n" +
	"user: octocat\n" +
	"repo: hello\n" +
	"limit: 10\n" +
	"```\n" +
	"tail\n"

func TestScanParsesFields(t *testing.T) {
	doc := "```githubtracker\n" +
		"User: octocat\n" +
		"repo : hello\n" +
		"flavor: spicy\n" +
		"not a field line\n" +
		"```\n"
	blocks := Scan(doc)
	if len(blocks) != 1 {
		t.Fatalf("Scan found %d blocks, want 1", len(blocks))
	}
	f := blocks[0].Fields
	if f["user"] != "octocat" || f["repo"] != "hello" {
		t.Fatalf("fields wrong: %#v", f)
	}
	if f["flavor"] != "spicy" {
		t.Fatalf("unknown keys must be preserved: %#v", f)
	}
	if _, ok := f["not a field line"]; ok {
		t.Fatalf("colonless line should be skipped: %#v", f)
	}
}

func TestScanIgnoresOtherFences(t *testing.T) {
	doc := "```go\nfmt.Println(1)\n```\n```githubtrackerx\nuser: a\n```\n"
	if blocks := Scan(doc); len(blocks) != 0 {
		t.Fatalf("non-matching fences should not scan: %d", len(blocks))
	}
}

func TestScanUnterminatedFence(t *testing.T) {
	doc := "before\n```githubtracker\nuser: octocat\n"
	if blocks := Scan(doc); len(blocks) != 0 {
		t.Fatalf("unterminated fence should yield no blocks, got %d", len(blocks))
	}
	// and Replace with no blocks leaves the doc untouched
	if got := Replace(doc, nil, nil); got != doc {
		t.Fatalf("document modified: %q", got)
	}
}

func TestIdenticalBlocksGetDistinctIdentities(t *testing.T) {
	blocks := Scan(sampleDoc)
	if len(blocks) != 2 {
		t.Fatalf("Scan found %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID == blocks[1].ID {
		t.Fatalf("identical blocks must carry distinct identity tokens")
	}

	out := Replace(sampleDoc, blocks, map[uuid.UUID]string{
		blocks[0].ID: "FIRST",
		blocks[1].ID: "SECOND",
	})
	first := strings.Index(out, "FIRST")
	second := strings.Index(out, "SECOND")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("replacements misplaced:\n%s", out)
	}
	if strings.Contains(out, FenceTag) {
		t.Fatalf("fences should be gone:\n%s", out)
	}
	if !strings.Contains(out, "middle text\n") || !strings.HasSuffix(out, "tail\n") {
		t.Fatalf("surrounding text damaged:\n%s", out)
	}
}

func TestReplaceMissingResultKeepsSource(t *testing.T) {
	blocks := Scan(sampleDoc)
	out := Replace(sampleDoc, blocks, map[uuid.UUID]string{
		blocks[0].ID: "ONLY",
	})
	if !strings.Contains(out, "ONLY") {
		t.Fatalf("first block should be replaced:\n%s", out)
	}
	if strings.Count(out, "```githubtracker") != 1 {
		t.Fatalf("second block should keep its source text:\n%s", out)
	}
}

func TestReplaceEnsuresTrailingNewline(t *testing.T) {
	doc := "```githubtracker\nuser: a\nrepo: b\n```\nafter\n"
	blocks := Scan(doc)
	out := Replace(doc, blocks, map[uuid.UUID]string{blocks[0].ID: "no newline"})
	if !strings.Contains(out, "no newline\nafter\n") {
		t.Fatalf("replacement should be newline-terminated:\n%q", out)
	}
}
