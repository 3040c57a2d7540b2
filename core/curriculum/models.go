package curriculum

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
)

// Unit is an atomic teachable topic with a fixed position in the linear syllabus.
type Unit struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Sequence int    `json:"sequence"`
}

// Catalog is the list of curriculum units ordered by Sequence.
type Catalog []Unit

// NewCatalog copies units into a Catalog sorted by Sequence (ties by ID).
func NewCatalog(units []Unit) Catalog {
	cat := make(Catalog, len(units))
	copy(cat, units)
	sort.SliceStable(cat, func(i, j int) bool {
		if cat[i].Sequence == cat[j].Sequence {
			return cat[i].ID < cat[j].ID
		}
		return cat[i].Sequence < cat[j].Sequence
	})
	return cat
}

// Index maps unit IDs to units.
func (cat Catalog) Index() map[int64]Unit {
	idx := make(map[int64]Unit, len(cat))
	for _, u := range cat {
		idx[u.ID] = u
	}
	return idx
}

// MaxSequence returns the highest sequence of the catalog, 0 when empty.
func (cat Catalog) MaxSequence() int {
	if len(cat) == 0 {
		return 0
	}
	return cat[len(cat)-1].Sequence
}

// After returns at most n units whose sequence is strictly greater than seq, in catalog order.
func (cat Catalog) After(seq, n int) []Unit {
	i := sort.Search(len(cat), func(i int) bool { return cat[i].Sequence > seq })
	end := i + n
	if end > len(cat) {
		end = len(cat)
	}
	if i >= end {
		return nil
	}
	res := make([]Unit, end-i)
	copy(res, cat[i:end])
	return res
}

// Unknown returns the ids that are not part of the catalog, in input order.
func (cat Catalog) Unknown(ids []int64) []int64 {
	idx := cat.Index()
	var unknown []int64
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// NewUnit contains information needed to seed a curriculum unit.
type NewUnit struct {
	Category string `json:"category" mapstructure:"category" validate:"required,notblank"`
	Title    string `json:"title" mapstructure:"title" validate:"required,notblank"`
	Sequence int    `json:"sequence" mapstructure:"sequence" validate:"min=1"`
}

func (nu *NewUnit) Validate(validate *validator.Validate) error {
	nu.Category = core.CleanString(nu.Category)
	nu.Title = core.CleanString(nu.Title)
	return validate.Struct(nu)
}
