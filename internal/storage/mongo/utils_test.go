package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstand/pkg/model"
)

func TestMakeFilterBSON(t *testing.T) {
	t.Run("empty filters", func(t *testing.T) {
		assert.Equal(t, bson.M{}, makeFilterBSON(nil, model.MatchAll))
	})

	t.Run("single equality", func(t *testing.T) {
		got := makeFilterBSON(model.Filters{
			{Field: "year", Op: model.OpEq, Value: 2010},
		}, model.MatchAll)
		assert.Equal(t, bson.M{"year": bson.M{"$eq": 2010}}, got)
	})

	t.Run("multiple filters default to and", func(t *testing.T) {
		got := makeFilterBSON(model.Filters{
			{Field: "year", Op: model.OpGte, Value: 2000},
			{Field: "year", Op: model.OpLt, Value: 2010},
		}, model.MatchAll)
		assert.Equal(t, bson.M{"$and": []bson.M{
			{"year": bson.M{"$gte": 2000}},
			{"year": bson.M{"$lt": 2010}},
		}}, got)
	})

	t.Run("match any becomes or", func(t *testing.T) {
		got := makeFilterBSON(model.Filters{
			{Field: "name", Op: model.OpRegex, Value: "dragon"},
			{Field: "summary", Op: model.OpRegex, Value: "dragon"},
		}, model.MatchAny)
		assert.Equal(t, bson.M{"$or": []bson.M{
			{"name": bson.M{"$regex": primitive.Regex{Pattern: "dragon", Options: "i"}}},
			{"summary": bson.M{"$regex": primitive.Regex{Pattern: "dragon", Options: "i"}}},
		}}, got)
	})

	t.Run("unknown op skipped", func(t *testing.T) {
		got := makeFilterBSON(model.Filters{
			{Field: "year", Op: model.FilterOp("like"), Value: 1},
			{Field: "name", Op: model.OpEq, Value: "x"},
		}, model.MatchAll)
		assert.Equal(t, bson.M{"name": bson.M{"$eq": "x"}}, got)
	})
}

func TestMapOp(t *testing.T) {
	tests := []struct {
		op   model.FilterOp
		want string
	}{
		{model.OpEq, "$eq"},
		{model.OpNe, "$ne"},
		{model.OpGt, "$gt"},
		{model.OpGte, "$gte"},
		{model.OpLt, "$lt"},
		{model.OpLte, "$lte"},
		{model.OpIn, "$in"},
		{model.OpRegex, "$regex"},
		{model.FilterOp("like"), ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, mapOp(tc.op), string(tc.op))
	}
}
