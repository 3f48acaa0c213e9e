package index

import (
	"github.com/mochi-xyz/market/base/journal"
)

// Book is the full index family of one order type and one NFT standard.
type Book struct {
	all             *Set
	available       *Set
	byUser          *Keyed
	byUserAvailable *Keyed
	byNft           *Keyed
	byNftAvailable  *Keyed
	latest          *Latest
}

func NewBook(j *journal.Journal) *Book {
	return &Book{
		all:             NewSet(j),
		available:       NewSet(j),
		byUser:          NewKeyed(j),
		byUserAvailable: NewKeyed(j),
		byNft:           NewKeyed(j),
		byNftAvailable:  NewKeyed(j),
		latest:          NewLatest(j),
	}
}

// Add indexes a new active order under its user and every referenced nft contract.
func (b *Book) Add(id uint64, user string, nfts []string) {
	b.all.Add(id)
	b.available.Add(id)
	b.byUser.Add(Key(user), id)
	b.byUserAvailable.Add(Key(user), id)
	for _, nft := range nfts {
		b.byNft.Add(Key(nft), id)
		b.byNftAvailable.Add(Key(nft), id)
	}
}

// Deactivate drops the order from every available index.
func (b *Book) Deactivate(id uint64, user string, nfts []string) {
	b.available.Remove(id)
	b.byUserAvailable.Remove(Key(user), id)
	for _, nft := range nfts {
		b.byNftAvailable.Remove(Key(nft), id)
	}
}

func (b *Book) All() []uint64 {
	return b.all.Ids()
}

func (b *Book) Available() []uint64 {
	return b.available.Ids()
}

func (b *Book) IsAvailable(id uint64) bool {
	return b.available.Has(id)
}

func (b *Book) ByUser(user string, onlyAvailable bool) []uint64 {
	if onlyAvailable {
		return b.byUserAvailable.Ids(Key(user))
	}
	return b.byUser.Ids(Key(user))
}

func (b *Book) ByNft(nft string, onlyAvailable bool) []uint64 {
	if onlyAvailable {
		return b.byNftAvailable.Ids(Key(nft))
	}
	return b.byNft.Ids(Key(nft))
}

func (b *Book) SetLatest(id uint64, parts ...string) {
	b.latest.Set(Key(parts...), id)
}

func (b *Book) Latest(parts ...string) (uint64, bool) {
	return b.latest.Get(Key(parts...))
}
