package names

import (
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Directory maps a source address to a friendly display name.
type Directory struct {
	nameByAddress cmap.ConcurrentMap[string, string]
}

func NewDirectory() *Directory {
	return &Directory{
		nameByAddress: cmap.New[string](),
	}
}

// Upsert stores name for sourceAddress, last write wins.
// Blank names are ignored and report false.
func (d *Directory) Upsert(sourceAddress string, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	d.nameByAddress.Set(sourceAddress, name)
	return true
}

func (d *Directory) Lookup(sourceAddress string) (string, bool) {
	return d.nameByAddress.Get(sourceAddress)
}

// Resolve returns the stored name or the address itself.
func (d *Directory) Resolve(sourceAddress string) string {
	name, ok := d.nameByAddress.Get(sourceAddress)
	if !ok {
		return sourceAddress
	}
	return name
}

func (d *Directory) Len() int {
	return d.nameByAddress.Count()
}
