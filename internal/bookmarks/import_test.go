package bookmarks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/floccus/internal/apperr"
	"github.com/starford/floccus/internal/testutil"
	"github.com/starford/floccus/internal/xbel"
)

const netscape = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Savings</H3>
    <DL><p>
        <DT><A HREF="https://save1.example">Save 1</A>
        <DT><A HREF="https://save2.example">Save 2</A>
    </DL><p>
    <DT><A HREF="https://loose.example">Loose</A>
</DL><p>`

func TestImport(t *testing.T) {
	svc, fake, _ := newTestService(t, testutil.BankXBEL, true)
	res, err := svc.Import(context.Background(), ImportRequest{
		Source: strings.NewReader(netscape),
		Under:  xbel.ParseAddress("append=2"),
		Push:   true,
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Items != 4 || res.FirstID != "6" || res.LastID != "9" {
		t.Errorf("result = %+v", res)
	}
	if len(fake.published) != 1 {
		t.Errorf("published %d times", len(fake.published))
	}

	doc, err := svc.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := "1,2,3,4,6,7,8,9,5"
	if got := strings.Join(flatIDs(doc), ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	savings, err := doc.Resolve(xbel.ByPath("admin/bank/Savings"))
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := savings.Item().(*xbel.Folder); !ok || len(f.Items) != 2 {
		t.Errorf("Savings = %+v", savings.Item())
	}
}

func TestImport_Errors(t *testing.T) {
	cases := []struct {
		name string
		req  ImportRequest
		want error
	}{
		{"no source", ImportRequest{Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"no bookmarks", ImportRequest{Source: strings.NewReader("<p>hi</p>"), Under: xbel.Root()}, apperr.ErrInvalidInput},
		{"bad address", ImportRequest{Source: strings.NewReader(netscape), Under: xbel.ParseAddress("99")}, apperr.ErrNotFound},
		{"not a folder", ImportRequest{Source: strings.NewReader(netscape), Under: xbel.ParseAddress("prepend=5")}, apperr.ErrNotAFolder},
	}
	for _, tc := range cases {
		svc, _, dir := newTestService(t, testutil.BankXBEL, false)
		_, err := svc.Import(context.Background(), tc.req)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
		if readDoc(t, dir) != testutil.BankXBEL {
			t.Errorf("%s: file changed", tc.name)
		}
	}
}
