package xbel

import (
	"fmt"
	"strconv"
	"strings"
)

// AddressKind selects how an Address is resolved.
type AddressKind int

const (
	// AddressRoot is the top-level item list.
	AddressRoot AddressKind = iota
	// AddressID locates an item by id (breadth-first, first match).
	AddressID
	// AddressPath locates an item by a "/"-delimited title path.
	AddressPath
)

// Placement says where a new item lands relative to an id-addressed item.
type Placement int

const (
	// InFolderAppend adds as the last child of the target folder.
	InFolderAppend Placement = iota
	// InFolderPrepend adds as the first child of the target folder.
	InFolderPrepend
	// Before inserts among the target's siblings, right before it.
	Before
	// After inserts among the target's siblings, right after it.
	After
)

var placementPrefixes = []struct {
	prefix    string
	placement Placement
}{
	{"after=", After},
	{"before=", Before},
	{"append=", InFolderAppend},
	{"prepend=", InFolderPrepend},
}

func (p Placement) String() string {
	switch p {
	case InFolderPrepend:
		return "prepend"
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "append"
	}
}

// Address is a logical location in a Document.
type Address struct {
	Kind      AddressKind
	ID        uint64
	Path      string
	Placement Placement // only meaningful for AddressID
}

// Root addresses the top-level item list.
func Root() Address { return Address{Kind: AddressRoot} }

// ByID addresses the first item with the given id.
func ByID(id uint64, p Placement) Address {
	return Address{Kind: AddressID, ID: id, Placement: p}
}

// ByPath addresses an item by its title path, e.g. "admin/bank".
func ByPath(path string) Address { return Address{Kind: AddressPath, Path: path} }

// ParseAddress interprets the command-line address syntax:
//
//	root                        the top-level list
//	N, append=N                 id N, add as last child
//	prepend=N, before=N, after=N
//	anything else               a title path such as "admin/bank"
//
// It never fails; unrecognized input is a path.
func ParseAddress(s string) Address {
	if s == "root" {
		return Root()
	}
	rest, placement := s, InFolderAppend
	for _, pp := range placementPrefixes {
		if stripped, ok := strings.CutPrefix(s, pp.prefix); ok {
			rest, placement = stripped, pp.placement
			break
		}
	}
	if id, err := strconv.ParseUint(rest, 10, 64); err == nil {
		return ByID(id, placement)
	}
	return ByPath(s)
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseAddress.
func (a *Address) UnmarshalText(text []byte) error {
	*a = ParseAddress(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler. Root and id addresses parse
// back unchanged. A path is written as is, so a path that reads as "root", a
// bare number or a placement form ("after=3") parses back as that address
// instead; such titles are only reachable by id.
func (a Address) MarshalText() ([]byte, error) {
	switch a.Kind {
	case AddressRoot:
		return []byte("root"), nil
	case AddressID:
		return []byte(a.Placement.String() + "=" + strconv.FormatUint(a.ID, 10)), nil
	default:
		return []byte(a.Path), nil
	}
}

func (a Address) String() string {
	switch a.Kind {
	case AddressRoot:
		return "root"
	case AddressID:
		return fmt.Sprintf("id = %d", a.ID)
	default:
		return fmt.Sprintf("path = %s", a.Path)
	}
}
