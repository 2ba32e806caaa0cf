package xbel

import (
	"errors"
	"testing"

	"github.com/starford/floccus/internal/apperr"
)

func flatIDs(doc *Document) []string {
	var out []string
	for item := range doc.All() {
		out = append(out, item.ItemID())
	}
	return out
}

func TestAdd_EmptyRoot(t *testing.T) {
	doc := mustUnmarshal(t, emptyXBEL)
	b, err := doc.Add(Root(), "https://www.example_bank.com", "Example bank")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if b.ID != "1" {
		t.Errorf("id = %s, want 1", b.ID)
	}
	if len(doc.Items) != 1 || doc.Items[0] != b {
		t.Fatalf("items = %v", ids(doc.Items))
	}
}

func TestAdd_StaleSnapshotMintsSameID(t *testing.T) {
	// Two adds, each against its own copy of the same loaded file, collide.
	first := mustUnmarshal(t, emptyXBEL)
	second := mustUnmarshal(t, emptyXBEL)

	a, err := first.Add(Root(), "https://a", "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Add(Root(), "https://b", "b")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != "1" || b.ID != "1" {
		t.Errorf("ids = %s, %s; want 1, 1", a.ID, b.ID)
	}
}

func TestAdd_BeforeAfter(t *testing.T) {
	cases := []struct {
		addr Address
		want []string
	}{
		{ByID(3, Before), []string{"1", "2", "6", "3", "4", "5"}},
		{ByID(3, After), []string{"1", "2", "3", "6", "4", "5"}},
		{ByID(4, After), []string{"1", "2", "3", "4", "6", "5"}},
		{ByID(1, Before), []string{"6", "1", "2", "3", "4", "5"}},
		{ByID(1, After), []string{"1", "2", "3", "4", "5", "6"}},
		{ByID(2, Before), []string{"1", "6", "2", "3", "4", "5"}},
	}
	for _, tc := range cases {
		doc := bankDocument()
		if _, err := doc.Add(tc.addr, "https://new", "new"); err != nil {
			t.Fatalf("Add(%v): %v", tc.addr, err)
		}
		if got := flatIDs(doc); !equalStrings(got, tc.want) {
			t.Errorf("%v %v: order = %v, want %v", tc.addr, tc.addr.Placement, got, tc.want)
		}
	}
}

func TestAdd_BeforeSplicesAmongSiblings(t *testing.T) {
	doc := bankDocument()
	b, err := doc.Add(ParseAddress("before=3"), "https://new", "new")
	if err != nil {
		t.Fatal(err)
	}
	bank := doc.Items[0].(*Folder).Items[0].(*Folder)
	if got := ids(bank.Items); !equalStrings(got, []string{b.ID, "3", "4"}) {
		t.Errorf("bank children = %v", got)
	}
}

func TestAdd_InFolder(t *testing.T) {
	doc := bankDocument()
	appended, err := doc.Add(ParseAddress("append=2"), "https://last", "last")
	if err != nil {
		t.Fatal(err)
	}
	prepended, err := doc.Add(ParseAddress("prepend=2"), "https://first", "first")
	if err != nil {
		t.Fatal(err)
	}
	bank := doc.Items[0].(*Folder).Items[0].(*Folder)
	want := []string{prepended.ID, "3", "4", appended.ID}
	if got := ids(bank.Items); !equalStrings(got, want) {
		t.Errorf("bank children = %v, want %v", got, want)
	}
	if appended.ID != "6" || prepended.ID != "7" {
		t.Errorf("ids = %s, %s; want 6, 7", appended.ID, prepended.ID)
	}
}

func TestAdd_InFolderNotAFolder(t *testing.T) {
	for _, s := range []string{"append=3", "prepend=5", "3"} {
		doc := bankDocument()
		before := flatIDs(doc)
		_, err := doc.Add(ParseAddress(s), "https://x", "x")
		if !errors.Is(err, apperr.ErrNotAFolder) {
			t.Errorf("%s: err = %v, want ErrNotAFolder", s, err)
		}
		if got := flatIDs(doc); !equalStrings(got, before) {
			t.Errorf("%s: tree changed on failure: %v", s, got)
		}
	}
}

func TestAdd_Path(t *testing.T) {
	doc := bankDocument()
	b, err := doc.Add(ParseAddress("admin/bank"), "https://bank4", "Bank 4")
	if err != nil {
		t.Fatal(err)
	}
	bank := doc.Items[0].(*Folder).Items[0].(*Folder)
	if bank.Items[len(bank.Items)-1] != b {
		t.Errorf("bookmark not appended to bank")
	}

	_, err = doc.Add(ParseAddress("admin/My current bank"), "https://x", "x")
	if !errors.Is(err, apperr.ErrNotAFolder) {
		t.Errorf("err = %v, want ErrNotAFolder", err)
	}
}

func TestAdd_NotFound(t *testing.T) {
	doc := bankDocument()
	for _, s := range []string{"99", "before=99", "nowhere/at/all"} {
		if _, err := doc.Add(ParseAddress(s), "https://x", "x"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", s, err)
		}
	}
	if n := doc.Len(); n != 5 {
		t.Errorf("Len = %d after failed adds, want 5", n)
	}
}

func TestInsert_KeepsOrderOfRun(t *testing.T) {
	doc := bankDocument()
	run := []Item{&Bookmark{ID: "10"}, &Bookmark{ID: "11"}}
	if err := doc.Insert(ByID(4, Before), run...); err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "2", "3", "10", "11", "4", "5"}
	if got := flatIDs(doc); !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRemove_Path(t *testing.T) {
	doc := bankDocument()
	r, err := doc.Remove(ParseAddress("admin/bank"), false)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Item.ItemID() != "2" || r.Descendants != 2 || r.Index != 0 {
		t.Errorf("removal = %+v", r)
	}
	if got := flatIDs(doc); !equalStrings(got, []string{"1", "5"}) {
		t.Errorf("remaining = %v, want [1 5]", got)
	}
}

func TestRemove_ID(t *testing.T) {
	doc := bankDocument()
	if _, err := doc.Remove(ByID(4, InFolderAppend), false); err != nil {
		t.Fatal(err)
	}
	if got := flatIDs(doc); !equalStrings(got, []string{"1", "2", "3", "5"}) {
		t.Errorf("remaining = %v", got)
	}
	highest, _ := doc.HighestID()
	if highest != 5 {
		t.Errorf("highest = %d, want 5", highest)
	}
}

func TestRemove_DryRunIsNoop(t *testing.T) {
	for _, s := range []string{"1", "admin/bank", "5"} {
		doc := bankDocument()
		beforeLen := doc.Len()
		beforeHighest, _ := doc.HighestID()

		r, err := doc.Remove(ParseAddress(s), true)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if !r.DryRun || r.Item == nil {
			t.Errorf("%s: report = %+v", s, r)
		}
		afterHighest, _ := doc.HighestID()
		if doc.Len() != beforeLen || afterHighest != beforeHighest {
			t.Errorf("%s: dry run changed the tree", s)
		}
	}
}

func TestRemove_RootUnsupported(t *testing.T) {
	doc := bankDocument()
	_, err := doc.Remove(Root(), false)
	if !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if doc.Len() != 5 {
		t.Errorf("tree changed")
	}
}

func TestRemove_NotFound(t *testing.T) {
	doc := bankDocument()
	if _, err := doc.Remove(ByID(77, Before), false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsert_NilItemRejected(t *testing.T) {
	var nilBookmark *Bookmark
	cases := map[string][]Item{
		"nil":            {nil},
		"typed nil":      {nilBookmark},
		"nil in run":     {&Bookmark{ID: "6", Title: "x"}, nil},
		"nil in subtree": {&Folder{ID: "6", Title: "f", Items: []Item{nil}}},
	}
	for name, items := range cases {
		doc := bankDocument()
		if err := doc.Insert(Root(), items...); !errors.Is(err, apperr.ErrUnsupported) {
			t.Errorf("%s: err = %v, want ErrUnsupported", name, err)
		}
		if got := doc.Len(); got != 5 {
			t.Errorf("%s: len = %d, want 5", name, got)
		}
		if _, err := doc.HighestID(); err != nil {
			t.Errorf("%s: HighestID: %v", name, err)
		}
	}
}
