package db

import (
	"strings"

	"github.com/nemopss/fin-ng/backend/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause собирает условия, соединённые через AND, с плейсхолдерами "?".
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func ownerClause(owner string) *whereClause {
	w := &whereClause{}
	if owner != "" {
		w.add("user_id = ?", owner)
	}
	return w
}

// transactionFilter переводит Filter в WHERE в том же порядке, что и Filter.Match.
func (s *Storage) transactionFilter(f models.Filter, owner string) *whereClause {
	d := s.dialect
	w := ownerClause(owner)

	if f.Search != "" {
		pattern := d.searchPattern(f.Search)
		like := " " + d.like + ` ? ESCAPE '\'`
		w.add("("+d.searchColumn("description")+like+" OR "+d.searchColumn("user_id")+like+" OR "+d.amountText+like+")",
			pattern, pattern, pattern)
	}
	if f.Category != "" {
		w.add("category = ?", string(f.Category))
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.User != "" {
		w.add("user_id = ?", f.User)
	}
	if f.DateFrom != nil {
		w.add("date >= ?", d.timeArg(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("date <= ?", d.timeArg(*f.DateTo))
	}
	if f.AmountFrom != nil {
		w.add("amount >= ?", d.amountArg(*f.AmountFrom))
	}
	if f.AmountTo != nil {
		w.add("amount <= ?", d.amountArg(*f.AmountTo))
	}
	return w
}
