package input

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExpandValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.txt")
	if err := os.WriteFile(path, []byte("USER.*\n\n  SYS1.**  \n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stdin := strings.NewReader("A.B\nC.D\n")

	got := ExpandValues([]string{"X.Y", "-", "@" + path, "-", "@" + filepath.Join(path, "missing")}, stdin)
	want := []string{"X.Y", "A.B", "C.D", "USER.*", "SYS1.**"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandValues = %v, want %v", got, want)
	}
}

func TestExpandValuesBareAt(t *testing.T) {
	got := ExpandValues([]string{"@"}, strings.NewReader(""))
	if !reflect.DeepEqual(got, []string{"@"}) {
		t.Errorf("ExpandValues = %v", got)
	}
}
