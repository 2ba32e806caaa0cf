package bookmarks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/starford/floccus/internal/apperr"
	"github.com/starford/floccus/internal/testutil"
	"github.com/starford/floccus/internal/xbel"
)

type fakeSyncer struct {
	mu         sync.Mutex
	remote     bool
	prepared   int
	published  []string // file content seen at publish time
	publishErr error
	dir        string
}

func (f *fakeSyncer) Prepare(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepared++
	return nil
}

func (f *fakeSyncer) Publish(_ context.Context, file string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := os.ReadFile(filepath.Join(f.dir, file))
	f.published = append(f.published, string(data))
	return f.publishErr
}

func (f *fakeSyncer) HasRemote() bool { return f.remote }

func newTestService(t *testing.T, content string, remote bool, opts ...Option) (*Service, *fakeSyncer, string) {
	t.Helper()
	dir, store := testutil.TestRepo(t, content)
	fake := &fakeSyncer{remote: remote, dir: dir}
	opts = append([]Option{WithSyncer(fake)}, opts...)
	return NewService(store, opts...), fake, dir
}

func readDoc(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, DefaultFile))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func flatIDs(doc *xbel.Document) []string {
	var out []string
	for item := range doc.All() {
		out = append(out, item.ItemID())
	}
	return out
}

func TestAdd_EmptyDocumentLayout(t *testing.T) {
	svc, _, dir := newTestService(t, testutil.EmptyXBEL, false)
	b, err := svc.Add(context.Background(), AddRequest{
		URL:   "https://www.example_bank.com",
		Title: "Example bank",
		Under: xbel.Root(),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if b.ID != "1" {
		t.Errorf("id = %s, want 1", b.ID)
	}
	want := xbel.Header + `<xbel version="1.0">
<!--- highestId :1: for Floccus bookmark sync browser extension -->

<bookmark href="https://www.example_bank.com" id="1">
  <title>Example bank</title>
</bookmark>
</xbel>`
	if got := readDoc(t, dir); got != want {
		t.Errorf("file:\n%s\nwant:\n%s", got, want)
	}
}

func TestAdd_PublishesAfterWrite(t *testing.T) {
	svc, fake, dir := newTestService(t, testutil.BankXBEL, true)
	b, err := svc.Add(context.Background(), AddRequest{
		URL:   "https://new",
		Title: "new",
		Under: xbel.ParseAddress("before=3"),
		Push:  true,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if b.ID != "6" {
		t.Errorf("id = %s, want 6", b.ID)
	}
	if len(fake.published) != 1 {
		t.Fatalf("published %d times, want 1", len(fake.published))
	}
	if !strings.Contains(fake.published[0], `id="6"`) {
		t.Error("publish ran before the new document was written")
	}
	if fake.published[0] != readDoc(t, dir) {
		t.Error("published content differs from file")
	}
}

func TestAdd_PushWithoutRemote(t *testing.T) {
	svc, fake, dir := newTestService(t, testutil.BankXBEL, false)
	_, err := svc.Add(context.Background(), AddRequest{URL: "https://x", Title: "x", Under: xbel.Root(), Push: true})
	if !errors.Is(err, apperr.ErrPushWithoutRemote) {
		t.Fatalf("err = %v, want ErrPushWithoutRemote", err)
	}
	if readDoc(t, dir) != testutil.BankXBEL {
		t.Error("file changed")
	}
	if len(fake.published) != 0 {
		t.Error("published without remote")
	}
}

func TestAdd_NoPush(t *testing.T) {
	svc, fake, _ := newTestService(t, testutil.BankXBEL, true)
	if _, err := svc.Add(context.Background(), AddRequest{URL: "https://x", Title: "x", Under: xbel.Root()}); err != nil {
		t.Fatal(err)
	}
	if len(fake.published) != 0 {
		t.Error("published although push was disabled")
	}
}

func TestAdd_FailuresLeaveFileUntouched(t *testing.T) {
	cases := []struct {
		name string
		req  AddRequest
		want error
	}{
		{"missing url", AddRequest{Title: "x", Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"missing title", AddRequest{URL: "https://x", Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"control char in title", AddRequest{URL: "https://x", Title: "tab\there\x01ctl", Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"control char in url", AddRequest{URL: "https://x/\x1b", Title: "x", Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"not a folder", AddRequest{URL: "https://x", Title: "x", Under: xbel.ParseAddress("3")}, apperr.ErrNotAFolder},
		{"not found", AddRequest{URL: "https://x", Title: "x", Under: xbel.ParseAddress("admin/nope")}, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		svc, _, dir := newTestService(t, testutil.BankXBEL, true)
		_, err := svc.Add(context.Background(), tc.req)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
		if readDoc(t, dir) != testutil.BankXBEL {
			t.Errorf("%s: file changed", tc.name)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	svc, _, _ := newTestService(t, "", false)
	if _, err := svc.Load(context.Background()); !errors.Is(err, apperr.ErrIO) {
		t.Errorf("missing file err = %v, want ErrIO", err)
	}

	svc, _, _ = newTestService(t, "<html/>", false)
	if _, err := svc.Load(context.Background()); !errors.Is(err, apperr.ErrFormat) {
		t.Errorf("bad file err = %v, want ErrFormat", err)
	}
}

func TestRemove_DryRun(t *testing.T) {
	svc, fake, dir := newTestService(t, testutil.BankXBEL, true)
	r, err := svc.Remove(context.Background(), RemoveRequest{Item: xbel.ParseAddress("admin/bank"), DryRun: true, Push: true})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !r.DryRun || r.Item.ItemID() != "2" || r.Descendants != 2 {
		t.Errorf("removal = %+v", r)
	}
	if readDoc(t, dir) != testutil.BankXBEL {
		t.Error("dry run changed the file")
	}
	if len(fake.published) != 0 {
		t.Error("dry run published")
	}
}

func TestRemove_Path(t *testing.T) {
	var events []string
	svc, _, _ := newTestService(t, testutil.BankXBEL, false, WithNotifier(func(kind, id string) {
		events = append(events, kind+":"+id)
	}))
	if _, err := svc.Remove(context.Background(), RemoveRequest{Item: xbel.ParseAddress("admin/bank")}); err != nil {
		t.Fatal(err)
	}
	doc, err := svc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := flatIDs(doc); strings.Join(got, ",") != "1,5" {
		t.Errorf("remaining = %v, want [1 5]", got)
	}
	if len(events) != 1 || events[0] != EventRemoved+":2" {
		t.Errorf("events = %v", events)
	}
}

func TestRemove_Root(t *testing.T) {
	svc, _, dir := newTestService(t, testutil.BankXBEL, false)
	if _, err := svc.Remove(context.Background(), RemoveRequest{Item: xbel.Root()}); !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if readDoc(t, dir) != testutil.BankXBEL {
		t.Error("file changed")
	}
}

func TestPublishFailureAfterWrite(t *testing.T) {
	svc, fake, dir := newTestService(t, testutil.BankXBEL, true)
	fake.publishErr = errors.New("remote rejected")
	_, err := svc.Remove(context.Background(), RemoveRequest{Item: xbel.ByID(5, xbel.InFolderAppend), Push: true})
	if err == nil || !strings.Contains(err.Error(), "remote rejected") {
		t.Fatalf("err = %v", err)
	}
	if strings.Contains(readDoc(t, dir), `id="5"`) {
		t.Error("local write should survive a failed push")
	}
}

func TestAdd_ConcurrentMintsDistinctIDs(t *testing.T) {
	svc, _, _ := newTestService(t, testutil.BankXBEL, false)
	const n = 10
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := svc.Add(context.Background(), AddRequest{URL: "https://x", Title: "x", Under: xbel.Root()})
			errs[i] = err
			if err == nil {
				ids[i] = b.ID
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range n {
		if errs[i] != nil {
			t.Fatalf("Add %d: %v", i, errs[i])
		}
		if seen[ids[i]] {
			t.Errorf("duplicate id %s", ids[i])
		}
		seen[ids[i]] = true
	}
}

func TestGetAndFind(t *testing.T) {
	svc, _, _ := newTestService(t, testutil.BankXBEL, false)
	ctx := context.Background()

	item, err := svc.Get(ctx, xbel.ByID(4, xbel.InFolderAppend))
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := item.(*xbel.Bookmark); !ok || b.Href != "https://www.bank2.com" {
		t.Errorf("item = %+v", item)
	}
	if _, err := svc.Get(ctx, xbel.Root()); !errors.Is(err, apperr.ErrUnsupported) {
		t.Errorf("Get(root) err = %v", err)
	}

	found, err := svc.Find(ctx, xbel.Query{Text: "bank", Kind: xbel.FindFolders})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ItemID() != "2" {
		t.Errorf("found = %v", found)
	}
}

func TestPrepare(t *testing.T) {
	svc, fake, _ := newTestService(t, testutil.BankXBEL, false)
	if err := svc.Prepare(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fake.prepared != 1 {
		t.Errorf("prepared = %d", fake.prepared)
	}
}

func TestDefaultSyncerNeverPushes(t *testing.T) {
	_, store := testutil.TestRepo(t, testutil.BankXBEL)
	svc := NewService(store)
	if svc.CanPush() {
		t.Error("default syncer reported a remote")
	}
	_, err := svc.Add(context.Background(), AddRequest{URL: "https://x", Title: "x", Under: xbel.Root(), Push: true})
	if !errors.Is(err, apperr.ErrPushWithoutRemote) {
		t.Errorf("err = %v", err)
	}
}

func TestRenderTree(t *testing.T) {
	doc, err := xbel.Unmarshal([]byte(testutil.BankXBEL))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := RenderTree(&buf, doc); err != nil {
		t.Fatal(err)
	}
	want := "[📁 1] admin\n" +
		"  [📁 2] bank\n" +
		"    [🔗 3] Bank 1 - Best bank in the world\n" +
		"    - https://www.bank1.com/\n" +
		"    [🔗 4] Bank 2 because 2 > 1 !#€\n" +
		"    - https://www.bank2.com\n" +
		"  [🔗 5] My current bank\n" +
		"  - https://www.bank3.com\n"
	if buf.String() != want {
		t.Errorf("render:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(&xbel.Folder{ID: "2", Title: "bank"}); got != "[📁 2] bank" {
		t.Errorf("folder = %q", got)
	}
	if got := Describe(&xbel.Bookmark{ID: "3", Title: "b", Href: "https://b"}); got != "[🔗 3] b - https://b" {
		t.Errorf("bookmark = %q", got)
	}
}

func TestCreate(t *testing.T) {
	var events []string
	svc, fake, dir := newTestService(t, "", true, WithNotifier(func(kind, _ string) { events = append(events, kind) }))
	if err := svc.Create(context.Background(), true); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := readDoc(t, dir); got != testutil.EmptyXBEL {
		t.Errorf("file =\n%s", got)
	}
	if len(fake.published) != 1 || fake.published[0] != testutil.EmptyXBEL {
		t.Errorf("published = %q", fake.published)
	}
	if len(events) != 1 || events[0] != EventCreated {
		t.Errorf("events = %v", events)
	}

	if err := svc.Create(context.Background(), true); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second Create err = %v, want ErrAlreadyExists", err)
	}
	if len(fake.published) != 1 {
		t.Errorf("published %d times, want 1", len(fake.published))
	}
}

func TestCreate_KeepsExistingFile(t *testing.T) {
	svc, _, dir := newTestService(t, testutil.BankXBEL, false)
	if err := svc.Create(context.Background(), false); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	if readDoc(t, dir) != testutil.BankXBEL {
		t.Error("file changed")
	}
}

func TestCreate_PushWithoutRemote(t *testing.T) {
	svc, _, dir := newTestService(t, "", false)
	if err := svc.Create(context.Background(), true); !errors.Is(err, apperr.ErrPushWithoutRemote) {
		t.Errorf("err = %v, want ErrPushWithoutRemote", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written: %v", err)
	}
}

type countingMinter struct {
	calls int
	next  int
}

func (m *countingMinter) NextID(*xbel.Document) (string, error) {
	m.calls++
	m.next++
	return strconv.Itoa(100 + m.next), nil
}

func TestAdd_WithMinter(t *testing.T) {
	minter := &countingMinter{}
	svc, _, dir := newTestService(t, testutil.BankXBEL, false, WithMinter(minter))
	for _, want := range []string{"101", "102"} {
		b, err := svc.Add(context.Background(), AddRequest{URL: "https://x", Title: "x", Under: xbel.ParseAddress("admin")})
		if err != nil {
			t.Fatal(err)
		}
		if b.ID != want {
			t.Errorf("id = %s, want %s", b.ID, want)
		}
	}
	if minter.calls != 2 {
		t.Errorf("minter called %d times, want 2", minter.calls)
	}
	if !strings.Contains(readDoc(t, dir), "highestId :102:") {
		t.Errorf("comment does not track minted ids:\n%s", readDoc(t, dir))
	}
}
