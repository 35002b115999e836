package db

import (
	"database/sql/driver"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
)

// LIKE в SQLite игнорирует регистр только для ASCII, поэтому поиск
// сравнивает строки, приведённые к нижнему регистру функцией Go.
const sqliteLowerFunc = "go_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// sqliteTimeLayout имеет фиксированную ширину, чтобы даты сравнивались как строки.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dialect хранит различия SQL между PostgreSQL и SQLite.
// Запросы пишутся с плейсхолдерами "?", rebind переводит их в $n для PostgreSQL.
type dialect struct {
	name          string
	driver        string
	goose         goose.Dialect
	migrationsDir string
	like          string
	lower         string
	amountText    string
	month         string
}

var (
	postgresDialect = dialect{
		name:          "postgres",
		driver:        "postgres",
		goose:         goose.DialectPostgres,
		migrationsDir: "migrations/postgres",
		like:          "ILIKE",
		amountText:    "amount::text",
		month:         "to_char(date AT TIME ZONE 'UTC', 'YYYY-MM')",
	}
	sqliteDialect = dialect{
		name:          "sqlite",
		driver:        "sqlite",
		goose:         goose.DialectSQLite3,
		migrationsDir: "migrations/sqlite",
		like:          "LIKE",
		lower:         sqliteLowerFunc,
		// REAL без хвостовых нулей: 1500.0 -> "1500", как decimal.String
		amountText: "rtrim(rtrim(printf('%.6f', amount), '0'), '.')",
		month:      "substr(date, 1, 7)",
	}
)

func (d dialect) rebind(query string) string {
	if d.name != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// searchColumn оборачивает колонку в функцию нижнего регистра, если она нужна диалекту.
func (d dialect) searchColumn(col string) string {
	if d.lower == "" {
		return col
	}
	return d.lower + "(" + col + ")"
}

// searchPattern строит шаблон LIKE для подстроки.
func (d dialect) searchPattern(search string) string {
	if d.lower != "" {
		search = strings.ToLower(search)
	}
	return "%" + likeEscaper.Replace(search) + "%"
}

func (d dialect) timeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if d.name == "sqlite" {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

func (d dialect) amountArg(a decimal.Decimal) any {
	if d.name == "sqlite" {
		return a.InexactFloat64()
	}
	return a.String()
}

// sum убирает шум плавающей точки в SQLite, где amount хранится как REAL.
func (d dialect) sum(expr string) string {
	if d.name == "sqlite" {
		return "ROUND(SUM(" + expr + "), 6)"
	}
	return "SUM(" + expr + ")"
}
