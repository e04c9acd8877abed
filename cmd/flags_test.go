package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/marcus/mfx/internal/models"
	"github.com/spf13/cobra"
)

func TestSchemaFlagAcceptsAliases(t *testing.T) {
	tests := map[string]models.Schema{
		"ds":   models.SchemaDatasets,
		"USS":  models.SchemaUSS,
		"jes":  models.SchemaJobs,
		"jobs": models.SchemaJobs,
	}
	for in, want := range tests {
		c := &cobra.Command{Use: "x"}
		addSchemaFlag(c)
		if err := c.Flags().Set("schema", in); err != nil {
			t.Fatalf("Set(%q): %v", in, err)
		}
		if got := schemaOf(c); got != want {
			t.Errorf("schema for %q = %s, want %s", in, got, want)
		}
	}
}

func TestSchemaFlagRejectsUnknown(t *testing.T) {
	c := &cobra.Command{Use: "x"}
	addSchemaFlag(c)
	if err := c.Flags().Set("schema", "tso"); err == nil {
		t.Error("expected error for unknown schema")
	}
	if got := schemaOf(c); got != models.SchemaDatasets {
		t.Errorf("schema = %s, want default datasets", got)
	}
}

func TestSchemaOfWithoutFlag(t *testing.T) {
	if got := schemaOf(&cobra.Command{Use: "x"}); got != models.SchemaDatasets {
		t.Errorf("schema = %s, want datasets", got)
	}
}

func TestParseAttr(t *testing.T) {
	if v, ok := parseAttr("80").(int); !ok || v != 80 {
		t.Errorf("parseAttr(80) = %#v", parseAttr("80"))
	}
	if v, ok := parseAttr("true").(bool); !ok || !v {
		t.Errorf("parseAttr(true) = %#v", parseAttr("true"))
	}
	if v, ok := parseAttr("FB").(string); !ok || v != "FB" {
		t.Errorf("parseAttr(FB) = %#v", parseAttr("FB"))
	}
}

func TestCompact(t *testing.T) {
	got := compact(json.RawMessage("[\n  \"a\",\n  \"b\"\n]"))
	if got != `["a","b"]` {
		t.Errorf("compact = %s", got)
	}

	long := json.RawMessage(`"` + strings.Repeat("x", 200) + `"`)
	got = compact(long)
	if len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("long value not truncated: len %d", len(got))
	}

	if got := compact(json.RawMessage("{bad")); got != "{bad" {
		t.Errorf("invalid json = %q, want raw", got)
	}
}
