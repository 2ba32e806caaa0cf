package mcpserver

// AddressSyntax describes how tools address folders and bookmarks.
const AddressSyntax = `# Floccus Address Syntax

Folders and bookmarks live in a single XBEL file. Every item carries a
numeric id that is unique within the file. Tools that take an address
(` + "`" + `under` + "`" + `, ` + "`" + `item` + "`" + `) accept one of:

| Address        | Meaning                                                    |
|----------------|------------------------------------------------------------|
| ` + "`" + `root` + "`" + `           | The top level of the tree (add appends at the end)        |
| ` + "`" + `N` + "`" + `              | Item with id N; add appends inside it (must be a folder)   |
| ` + "`" + `append=N` + "`" + `       | Same as ` + "`" + `N` + "`" + `                                                |
| ` + "`" + `prepend=N` + "`" + `      | Add as the first child of folder N                         |
| ` + "`" + `before=N` + "`" + `       | Add as the sibling just before item N                      |
| ` + "`" + `after=N` + "`" + `        | Add as the sibling just after item N                       |
| ` + "`" + `a/b/c` + "`" + `          | Title path: folder "a", then child "b", then child "c"     |

## Rules

1. Ids are looked up level by level; the first match wins.
2. Title paths match exact titles; at each level the first item with that
   title is taken, and the search does not backtrack.
3. Anything that is not ` + "`" + `root` + "`" + ` and not an id form is a title path.
4. Removing ` + "`" + `root` + "`" + ` is not allowed. Removing a folder removes its subtree.
5. New ids are one more than the highest id in the file.
6. Use ` + "`" + `list_bookmarks` + "`" + ` to see ids, and ` + "`" + `remove_bookmark` + "`" + ` with
   ` + "`" + `dry_run` + "`" + ` to preview a removal.

## Example

` + "```" + `
[📁 1] admin
  [📁 2] bank
    [🔗 3] Bank 1
    - https://www.bank1.com/
  [🔗 5] My current bank
  - https://www.bank3.com
` + "```" + `

` + "`" + `before=3` + "`" + ` puts a new bookmark ahead of "Bank 1" inside "bank";
` + "`" + `admin/bank` + "`" + ` and ` + "`" + `2` + "`" + ` both append to "bank".
`
