package xbel

import (
	"fmt"
	"unicode/utf8"

	"github.com/starford/floccus/internal/apperr"
)

// ValidText reports an error when s holds a character XML 1.0 cannot carry
// (control characters other than tab, newline and carriage return, surrogates,
// U+FFFE, U+FFFF) or is not valid UTF-8.
func ValidText(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("invalid utf-8 at byte %d: %w", i, apperr.ErrInvalidInput)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d not allowed in xml: %w", r, i, apperr.ErrInvalidInput)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

// checkItems rejects nil items and text that could not be written back.
func checkItems(items []Item) error {
	for _, item := range items {
		switch item := item.(type) {
		case nil:
			return fmt.Errorf("xbel: nil item: %w", apperr.ErrUnsupported)
		case *Bookmark:
			if item == nil {
				return fmt.Errorf("xbel: nil bookmark: %w", apperr.ErrUnsupported)
			}
			if err := ValidText(item.Href); err != nil {
				return fmt.Errorf("xbel: bookmark %s href: %w", item.ID, err)
			}
			if err := ValidText(item.Title); err != nil {
				return fmt.Errorf("xbel: bookmark %s title: %w", item.ID, err)
			}
		case *Folder:
			if item == nil {
				return fmt.Errorf("xbel: nil folder: %w", apperr.ErrUnsupported)
			}
			if err := ValidText(item.Title); err != nil {
				return fmt.Errorf("xbel: folder %s title: %w", item.ID, err)
			}
			if err := checkItems(item.Items); err != nil {
				return err
			}
		}
	}
	return nil
}
