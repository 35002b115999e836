package mongostore

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nemopss/fin-ng/backend/models"
)

var zero128, _ = primitive.ParseDecimal128("0")

// conjunction объединяет условия через $and. Одно условие не оборачивается.
func conjunction(conds []bson.D) bson.D {
	switch len(conds) {
	case 0:
		return bson.D{}
	case 1:
		return conds[0]
	}
	all := make(bson.A, 0, len(conds))
	for _, c := range conds {
		all = append(all, c)
	}
	return bson.D{{Key: "$and", Value: all}}
}

func ownerConds(owner string) []bson.D {
	if owner == "" {
		return nil
	}
	return []bson.D{{{Key: "userId", Value: owner}}}
}

// transactionFilter mirrors models.Filter.Match.
func transactionFilter(f models.Filter, owner string) (bson.D, error) {
	conds := ownerConds(owner)

	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		rx := primitive.Regex{Pattern: pattern, Options: "i"}
		conds = append(conds, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "description", Value: rx}},
			bson.D{{Key: "userId", Value: rx}},
			bson.D{{Key: "$expr", Value: bson.D{{Key: "$regexMatch", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$toString", Value: "$amount"}}},
				{Key: "regex", Value: pattern},
				{Key: "options", Value: "i"},
			}}}}},
		}}})
	}
	if f.Category != "" {
		conds = append(conds, bson.D{{Key: "category", Value: string(f.Category)}})
	}
	if f.Status != "" {
		conds = append(conds, bson.D{{Key: "status", Value: string(f.Status)}})
	}
	if f.User != "" {
		conds = append(conds, bson.D{{Key: "userId", Value: f.User}})
	}
	if f.DateFrom != nil {
		conds = append(conds, bson.D{{Key: "date", Value: bson.D{{Key: "$gte", Value: f.DateFrom.UTC()}}}})
	}
	if f.DateTo != nil {
		conds = append(conds, bson.D{{Key: "date", Value: bson.D{{Key: "$lte", Value: f.DateTo.UTC()}}}})
	}
	if f.AmountFrom != nil {
		v, err := toDecimal128(*f.AmountFrom)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.D{{Key: "amount", Value: bson.D{{Key: "$gte", Value: v}}}})
	}
	if f.AmountTo != nil {
		v, err := toDecimal128(*f.AmountTo)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.D{{Key: "amount", Value: bson.D{{Key: "$lte", Value: v}}}})
	}
	return conjunction(conds), nil
}

func sumWhen(field, value string) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$" + field, value}}},
		"$amount",
		zero128,
	}}}}}
}

func summaryPipeline(owner string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: conjunction(ownerConds(owner))}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "revenue", Value: sumWhen("category", string(models.CategoryRevenue))},
			{Key: "expenses", Value: sumWhen("category", string(models.CategoryExpense))},
			{Key: "pending", Value: sumWhen("status", string(models.StatusPending))},
			{Key: "paid", Value: sumWhen("status", string(models.StatusPaid))},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func monthlyPipeline(owner string, since, until time.Time) mongo.Pipeline {
	conds := append(ownerConds(owner),
		bson.D{{Key: "date", Value: bson.D{{Key: "$gte", Value: since.UTC()}, {Key: "$lt", Value: until.UTC()}}}})
	return mongo.Pipeline{
		{{Key: "$match", Value: conjunction(conds)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m"},
				{Key: "date", Value: "$date"},
				{Key: "timezone", Value: "UTC"},
			}}}},
			{Key: "revenue", Value: sumWhen("category", string(models.CategoryRevenue))},
			{Key: "expenses", Value: sumWhen("category", string(models.CategoryExpense))},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// breakdownPipeline группирует по полю; average округляется до копеек.
func breakdownPipeline(owner, field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: conjunction(ownerConds(owner))}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$amount"}}},
		}}},
		{{Key: "$set", Value: bson.D{{Key: "average", Value: bson.D{{Key: "$round", Value: bson.A{"$average", 2}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
