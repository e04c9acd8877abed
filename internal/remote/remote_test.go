package remote

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/marcus/mfx/internal/models"
)

var testSession = &models.Session{ProfileName: "p1"}

func labels(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Label)
	}
	return out
}

func TestMatchDatasetPattern(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"USER.*", "USER.DATA", true},
		{"USER.*", "USER.DATA.X", false},
		{"USER.**", "USER.DATA.X", true},
		{"USER", "USER.DATA.X", true},
		{"user.d%ta", "USER.DATA", true},
		{"OTHER.*,USER.*", "USER.DATA", true},
		{"SYS1.*", "USER.DATA", false},
	}
	for _, tc := range tests {
		if got := MatchDatasetPattern(tc.pattern, tc.name); got != tc.want {
			t.Errorf("MatchDatasetPattern(%q, %q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}

func TestListDatasetsAndMembers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(models.SchemaDatasets)
	m.Put("p1", Object{Path: "USER.PDS", Tag: models.TagPDS})
	m.Put("p1", Object{Path: "USER.PDS(MEM1)", Tag: models.TagMember})
	m.Put("p1", Object{Path: "USER.SEQ", Tag: models.TagDS})
	m.Put("p2", Object{Path: "USER.OTHER", Tag: models.TagDS})

	got, err := m.List(ctx, testSession, Query{Pattern: "USER.*"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"USER.PDS", "USER.SEQ"}; !reflect.DeepEqual(labels(got), want) {
		t.Errorf("datasets = %v, want %v", labels(got), want)
	}

	members, _ := m.List(ctx, testSession, Query{Path: "USER.PDS"})
	if want := []string{"MEM1"}; !reflect.DeepEqual(labels(members), want) {
		t.Errorf("members = %v, want %v", labels(members), want)
	}
}

func TestRenameMovesDescendants(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(models.SchemaUSS)
	m.Put("p1", Object{Path: "/u/me/dir", Tag: models.TagDirectory})
	m.Put("p1", Object{Path: "/u/me/dir/a.txt", Tag: models.TagTextFile})

	if err := m.Rename(ctx, testSession, "/u/me/dir", "/u/me/new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !m.Exists("p1", "/u/me/new/a.txt") || m.Exists("p1", "/u/me/dir/a.txt") {
		t.Error("descendant not moved")
	}
	got, _ := m.List(ctx, testSession, Query{Pattern: "/u/me"})
	if want := []string{"new"}; !reflect.DeepEqual(labels(got), want) {
		t.Errorf("list = %v, want %v", labels(got), want)
	}
}

func TestRenameErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(models.SchemaDatasets)
	m.Put("p1", Object{Path: "A.B", Tag: models.TagDS})
	m.Put("p1", Object{Path: "A.C", Tag: models.TagDS})

	if err := m.Rename(ctx, testSession, "A.X", "A.Y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
	if err := m.Rename(ctx, testSession, "A.B", "A.C"); !errors.Is(err, ErrExists) {
		t.Errorf("taken: err = %v, want ErrExists", err)
	}

	boom := errors.New("connection reset")
	m.Fail("rename", boom)
	if err := m.Rename(ctx, testSession, "A.B", "A.Z"); !errors.Is(err, boom) {
		t.Errorf("injected: err = %v, want %v", err, boom)
	}
	if !m.Exists("p1", "A.B") {
		t.Error("failed rename must not move the resource")
	}
}

func TestSubmitCreatesJob(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(models.SchemaJobs)
	id, err := m.Submit(ctx, testSession, []byte("//MYJOB JOB (ACCT)\n//STEP EXEC PGM=IEFBR14\n"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	jobs, _ := m.List(ctx, testSession, Query{Pattern: "MY*"})
	if len(jobs) != 1 || jobs[0].Label != "MYJOB("+id+")" {
		t.Fatalf("jobs = %+v", jobs)
	}
	spool, _ := m.List(ctx, testSession, Query{Path: id})
	if len(spool) != 1 || spool[0].Label != "JESJCL" {
		t.Errorf("spool = %+v", spool)
	}
}

func TestLoadFixture(t *testing.T) {
	src := `
profiles:
  p1:
    datasets:
      - {path: USER.PDS, tag: pds}
      - {path: USER.PDS(MEM1), tag: member, data: hello}
    uss:
      - {path: /u/p1/a.txt, tag: textFile}
`
	backends, err := LoadFixture(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	data, err := backends[models.SchemaDatasets].GetContents(context.Background(), testSession, "USER.PDS(MEM1)")
	if err != nil || string(data) != "hello" {
		t.Errorf("contents = %q, %v", data, err)
	}
	if !backends[models.SchemaUSS].Exists("p1", "/u/p1/a.txt") {
		t.Error("uss object not loaded")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewMemory(models.SchemaUSS))
	if _, err := r.For(models.SchemaUSS); err != nil {
		t.Errorf("For(uss): %v", err)
	}
	if _, err := r.For(models.SchemaJobs); !errors.Is(err, ErrNoAPI) {
		t.Errorf("For(jobs): err = %v, want ErrNoAPI", err)
	}
}
