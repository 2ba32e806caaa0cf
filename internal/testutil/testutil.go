// Package testutil provides shared test helpers for setting up repositories
// and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/floccus/internal/index"
	"github.com/starford/floccus/internal/storage"
)

// EmptyXBEL is the file written for a document without items.
const EmptyXBEL = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xbel PUBLIC "+//IDN python.org//DTD XML Bookmark Exchange Language 1.0//EN//XML" "http://pyxml.sourceforge.net/topics/dtds/xbel.dtd">
<xbel version="1.0">
<!--- highestId :0: for Floccus bookmark sync browser extension -->


</xbel>`

// BankXBEL holds folder "admin" (1) > folder "bank" (2) > bookmarks 3 and 4,
// then bookmark 5 inside "admin".
const BankXBEL = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE xbel PUBLIC "+//IDN python.org//DTD XML Bookmark Exchange Language 1.0//EN//XML" "http://pyxml.sourceforge.net/topics/dtds/xbel.dtd">
<xbel version="1.0">
<!--- highestId :5: for Floccus bookmark sync browser extension -->

<folder id="1">
  <title>admin</title>
  <folder id="2">
    <title>bank</title>
    <bookmark href="https://www.bank1.com/" id="3">
      <title>Bank 1 - Best bank in the world</title>
    </bookmark>
    <bookmark href="https://www.bank2.com" id="4">
      <title>Bank 2 because 2 &gt; 1 !#€</title>
    </bookmark>
  </folder>
  <bookmark href="https://www.bank3.com" id="5">
    <title>My current bank</title>
  </bookmark>
</folder>
</xbel>`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "floccus-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRepo creates a temporary repository directory holding bookmarks.xbel
// with the given content. An empty content leaves the file absent.
func TestRepo(t *testing.T, content string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, "bookmarks.xbel"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
