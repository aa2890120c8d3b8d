package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstand/pkg/model"
)

func makeFilterBSON(filters model.Filters, mode model.MatchMode) bson.M {
	clauses := make([]bson.M, 0, len(filters))
	for _, f := range filters {
		op := mapOp(f.Op)
		if op == "" {
			continue
		}
		value := f.Value
		if f.Op == model.OpRegex {
			pattern, _ := f.Value.(string)
			value = primitive.Regex{Pattern: pattern, Options: "i"}
		}
		clauses = append(clauses, bson.M{f.Field: bson.M{op: value}})
	}

	switch {
	case len(clauses) == 0:
		return bson.M{}
	case len(clauses) == 1:
		return clauses[0]
	case mode == model.MatchAny:
		return bson.M{"$or": clauses}
	default:
		return bson.M{"$and": clauses}
	}
}

func mapOp(op model.FilterOp) string {
	switch op {
	case model.OpEq:
		return "$eq"
	case model.OpNe:
		return "$ne"
	case model.OpGt:
		return "$gt"
	case model.OpGte:
		return "$gte"
	case model.OpLt:
		return "$lt"
	case model.OpLte:
		return "$lte"
	case model.OpIn:
		return "$in"
	case model.OpRegex:
		return "$regex"
	default:
		return ""
	}
}
