package xbel

import "strconv"

// IDMinter produces the id of the next item added to a document.
type IDMinter interface {
	NextID(d *Document) (string, error)
}

// HighestPlusOne mints highest id + 1, computed when called. Nothing is
// reserved, so two documents loaded from the same file mint the same id.
type HighestPlusOne struct{}

// NextID implements IDMinter.
func (HighestPlusOne) NextID(d *Document) (string, error) {
	highest, err := d.HighestID()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(highest+1, 10), nil
}

// Reservation remembers the last id it handed out and never repeats it, even
// if the minted item has not been inserted yet. Use one Reservation per
// document.
type Reservation struct {
	last uint64
}

// NextID implements IDMinter.
func (r *Reservation) NextID(d *Document) (string, error) {
	highest, err := d.HighestID()
	if err != nil {
		return "", err
	}
	r.last = max(highest, r.last) + 1
	return strconv.FormatUint(r.last, 10), nil
}

// UseMinter replaces the id minting strategy used by Add. A nil minter
// restores HighestPlusOne.
func (d *Document) UseMinter(m IDMinter) {
	d.minter = m
}

func (d *Document) mint() (string, error) {
	if d.minter == nil {
		return HighestPlusOne{}.NextID(d)
	}
	return d.minter.NextID(d)
}
