package models

import "testing"

func TestContextTagRoundTrip(t *testing.T) {
	tests := []ContextTag{
		{Base: TagDSSession},
		{Base: TagPDS, Favorite: true},
		{Base: TagDSSession, Home: true, Status: StatusActive},
		{Base: TagUSSSession, Favorite: true, Home: true, Status: StatusInactive},
		{Base: TagJobSession, Status: StatusUnverified},
	}
	for _, tag := range tests {
		s := tag.String()
		if got := ParseContextTag(s); got != tag {
			t.Errorf("ParseContextTag(%q) = %+v, want %+v", s, got, tag)
		}
	}
}

func TestContextTagRender(t *testing.T) {
	tag := ContextTag{Base: TagDSSession, Favorite: true, Home: true, Status: StatusActive}
	if got := tag.String(); got != "session_fav_home_active" {
		t.Errorf("String() = %q", got)
	}
	if got := ParseContextTag("pds_fav_bogus").String(); got != "pds_fav" {
		t.Errorf("unknown suffix kept: %q", got)
	}
}

func TestAsFavoriteDropsDecorations(t *testing.T) {
	tag := ContextTag{Base: TagDSSession, Home: true, Status: StatusInactive}
	if got := tag.AsFavorite().String(); got != "session_fav" {
		t.Errorf("AsFavorite() = %q", got)
	}
}

func TestKindForBase(t *testing.T) {
	tests := map[string]NodeKind{
		TagDSSession:  KindSession,
		TagJobSession: KindSession,
		TagFavorites:  KindFavoritesRoot,
		TagProfile:    KindFavoriteGroup,
		TagMember:     KindLeaf,
		TagSpool:      KindLeaf,
		TagPDS:        KindResource,
		TagTextFile:   KindResource,
	}
	for base, want := range tests {
		if got := KindForBase(base); got != want {
			t.Errorf("KindForBase(%q) = %v, want %v", base, got, want)
		}
	}
}

func TestNodeVariantsAreExclusive(t *testing.T) {
	session := NewNode(NodeOptions{Kind: KindSession, Label: "P1", Tag: ContextTag{Base: TagDSSession}})
	saved := NewNode(NodeOptions{Kind: KindResource, Label: "USER.*", Tag: ContextTag{Base: TagDSSession, Favorite: true}})
	member := NewNode(NodeOptions{Kind: KindLeaf, Label: "MEM", Path: "A.B(MEM)", Tag: ContextTag{Base: TagMember}})

	if !session.IsSessionRoot() || session.IsSavedSearch() || session.IsFavorite() {
		t.Error("session root flags")
	}
	if saved.IsSessionRoot() || !saved.IsSavedSearch() || !saved.IsFavorite() {
		t.Error("saved search flags")
	}
	if member.IsSessionRoot() || member.IsSavedSearch() || member.Collapsible != CollapsibleNone {
		t.Error("member flags")
	}
	if member.Tooltip != "A.B(MEM)" {
		t.Errorf("tooltip = %q", member.Tooltip)
	}
}

func TestNodeIndex(t *testing.T) {
	x := NewNodeIndex()
	root := NewNode(NodeOptions{Kind: KindSession, Label: "P1", Tag: ContextTag{Base: TagDSSession}})
	x.Add(root)
	pds := NewNode(NodeOptions{Kind: KindResource, Label: "A.B", Path: "A.B", Tag: ContextTag{Base: TagPDS}})
	x.Adopt(root, pds)
	mem := NewNode(NodeOptions{Kind: KindLeaf, Label: "M", Path: "A.B(M)", Tag: ContextTag{Base: TagMember}})
	x.Adopt(pds, mem)

	if x.Len() != 3 || x.Get(mem.Parent) != pds || x.Get(pds.Parent) != root {
		t.Fatalf("index len = %d", x.Len())
	}
	if !x.Detach(root, pds) {
		t.Fatal("Detach returned false")
	}
	if x.Len() != 1 || x.Get(mem.ID) != nil {
		t.Errorf("descendants still indexed: len = %d", x.Len())
	}
	if x.Detach(root, pds) {
		t.Error("second Detach should report false")
	}

	a := NewNode(NodeOptions{Kind: KindLeaf, Label: "a", Tag: ContextTag{Base: TagDS}})
	x.SetChildren(root, []*Node{a})
	x.SetChildren(root, nil)
	if x.Get(a.ID) != nil || x.Len() != 1 {
		t.Error("SetChildren did not unindex the previous set")
	}
}

func TestParseSchema(t *testing.T) {
	for in, want := range map[string]Schema{"ds": SchemaDatasets, " USS ": SchemaUSS, "jes": SchemaJobs} {
		got, err := ParseSchema(in)
		if err != nil || got != want {
			t.Errorf("ParseSchema(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSchema("tape"); err == nil {
		t.Error("expected error for unknown schema")
	}
}

func TestSessionRebind(t *testing.T) {
	s := NewSession(&Profile{Name: "P1", Host: "a"})
	s.Rebind(&Profile{Name: "P1", Host: "b", Port: 443})
	if s.Host != "b" || s.Port != 443 {
		t.Errorf("session = %+v", s)
	}
	s.Rebind(nil)
	if s.Host != "b" {
		t.Error("nil rebind changed session")
	}
}
