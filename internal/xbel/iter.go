package xbel

import "iter"

// Iterator walks a tree depth-first in preorder: a folder is produced before
// its children, and all of its descendants before its next sibling.
// It is lazy and single-pass; create a new one to walk again.
type Iterator struct {
	stack []Item
}

// NewIterator walks the given roots and their descendants.
func NewIterator(roots []Item) *Iterator {
	return &Iterator{stack: pushReversed(nil, roots)}
}

// Iter walks the whole document.
func (d *Document) Iter() *Iterator { return NewIterator(d.Items) }

// Next returns the next item, or false once the walk is over.
func (it *Iterator) Next() (Item, bool) {
	if len(it.stack) == 0 {
		return nil, false
	}
	item := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	if f, ok := item.(*Folder); ok {
		it.stack = pushReversed(it.stack, f.Items)
	}
	return item, true
}

// All returns the document items in Iterator order.
func (d *Document) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		it := d.Iter()
		for item, ok := it.Next(); ok; item, ok = it.Next() {
			if !yield(item) {
				return
			}
		}
	}
}

// Step is one element produced by a NestingIterator: either an item, or the
// end marker of the folder whose id is EndID.
type Step struct {
	Item  Item
	EndID string
}

// IsEnd reports whether the step closes a folder.
func (s Step) IsEnd() bool { return s.Item == nil }

// NestingIterator visits items in the same order as Iterator and, right
// after the last descendant of each folder, yields an end marker for it.
type NestingIterator struct {
	stack []Step
}

// NewNestingIterator walks the given roots and their descendants.
func NewNestingIterator(roots []Item) *NestingIterator {
	it := &NestingIterator{}
	it.pushItems(roots)
	return it
}

// Nesting walks the whole document.
func (d *Document) Nesting() *NestingIterator { return NewNestingIterator(d.Items) }

// Next returns the next step, or false once the walk is over.
func (it *NestingIterator) Next() (Step, bool) {
	if len(it.stack) == 0 {
		return Step{}, false
	}
	step := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	if f, ok := step.Item.(*Folder); ok {
		it.stack = append(it.stack, Step{EndID: f.ID})
		it.pushItems(f.Items)
	}
	return step, true
}

func (it *NestingIterator) pushItems(items []Item) {
	for i := len(items) - 1; i >= 0; i-- {
		it.stack = append(it.stack, Step{Item: items[i]})
	}
}

// Nested returns the document steps in NestingIterator order.
func (d *Document) Nested() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		it := d.Nesting()
		for step, ok := it.Next(); ok; step, ok = it.Next() {
			if !yield(step) {
				return
			}
		}
	}
}

func pushReversed(stack, items []Item) []Item {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}
	return stack
}
