package service

import (
	"math"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"option_chain/internal/models"
)

// Grouping — строки по страйку. Дерево держит страйки по возрастанию,
// поэтому отдельная сортировка не нужна.
type Grouping struct {
	tree *rbt.Tree
}

// Group собирает строки из снапшота стора с нуля. Индексные записи
// (strike_price == -1) пропускаются. Если на одну пару (strike, option_type)
// претендуют два символа, побеждает пришедший позже (больший Seq).
func Group(snapshot []models.Entry) *Grouping {
	g := &Grouping{tree: rbt.NewWith(utils.Float64Comparator)}

	for i := range snapshot {
		e := &snapshot[i]
		if e.IsIndex() || math.IsNaN(e.StrikePrice) {
			continue
		}

		var row *models.Row
		if v, ok := g.tree.Get(e.StrikePrice); ok {
			row = v.(*models.Row)
		} else {
			row = &models.Row{Strike: e.StrikePrice}
			g.tree.Put(e.StrikePrice, row)
		}

		switch e.OptionType {
		case models.OptionCall:
			if row.CE == nil || e.Seq > row.CE.Seq {
				row.CE = e
			}
		case models.OptionPut:
			if row.PE == nil || e.Seq > row.PE.Seq {
				row.PE = e
			}
		}
	}
	return g
}

func (g *Grouping) Len() int { return g.tree.Size() }

func (g *Grouping) Get(strike float64) (models.Row, bool) {
	v, ok := g.tree.Get(strike)
	if !ok {
		return models.Row{}, false
	}
	return *v.(*models.Row), true
}

// Rows отдаёт строки по возрастанию страйка.
func (g *Grouping) Rows() []models.Row {
	out := make([]models.Row, 0, g.tree.Size())
	it := g.tree.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*models.Row))
	}
	return out
}
