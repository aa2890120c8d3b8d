// Package storagetest provides an in-memory DocumentStore for tests. It
// mirrors the Mongo backend's observable behavior closely enough for the
// coordination layer to be exercised without a running database.
package storagetest

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// AggregateFunc lets a test supply pipeline results.
type AggregateFunc func(collection string, pipeline mongo.Pipeline) ([]bson.M, error)

// Store is an in-memory storage.DocumentStore.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	aggregateFn AggregateFunc
	failWith    error
}

var _ storage.DocumentStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string][]bson.M)}
}

// SetAggregateFunc installs the handler used by Aggregate.
func (s *Store) SetAggregateFunc(fn AggregateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregateFn = fn
}

// FailWith makes every subsequent operation return err. Pass nil to heal.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Insert(_ context.Context, collection string, doc any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}

	d, err := toBSONMap(doc)
	if err != nil {
		return "", err
	}
	id, _ := d["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		d["_id"] = id
	}
	s.collections[collection] = append(s.collections[collection], d)
	return id, nil
}

func (s *Store) GetByID(_ context.Context, collection string, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return s.failWith
	}

	for _, d := range s.collections[collection] {
		if d["_id"] == id {
			raw, err := bson.Marshal(d)
			if err != nil {
				return err
			}
			return bson.Unmarshal(raw, out)
		}
	}
	return model.ErrNotFound
}

func (s *Store) Find(_ context.Context, collection string, q model.Query, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return s.failWith
	}

	matches := s.match(collection, q)

	if len(q.Sort) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			for _, sf := range q.Sort {
				c := compareValues(matches[i][sf.Field], matches[j][sf.Field])
				if c == 0 {
					continue
				}
				if sf.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Skip > 0 {
		if q.Skip >= int64(len(matches)) {
			matches = nil
		} else {
			matches = matches[q.Skip:]
		}
	}
	if q.Limit > 0 && int64(len(matches)) > q.Limit {
		matches = matches[:q.Limit]
	}

	return decodeInto(matches, out)
}

func (s *Store) Count(_ context.Context, collection string, q model.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return int64(len(s.match(collection, q))), nil
}

func (s *Store) UpdateByID(_ context.Context, collection string, id string, set map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	for _, d := range s.collections[collection] {
		if d["_id"] == id {
			for k, v := range set {
				nv, err := normalizeBSON(v)
				if err != nil {
					return err
				}
				d[k] = nv
			}
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *Store) IncrementField(_ context.Context, collection string, id string, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	for _, d := range s.collections[collection] {
		if d["_id"] == id {
			d[field] = asInt64(d[field]) + delta
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *Store) DeleteByID(_ context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	docs := s.collections[collection]
	for i, d := range docs {
		if d["_id"] == id {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *Store) Aggregate(_ context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	s.mu.RLock()
	fn := s.aggregateFn
	failWith := s.failWith
	s.mu.RUnlock()

	if failWith != nil {
		return nil, failWith
	}
	if fn == nil {
		return nil, fmt.Errorf("storagetest: no aggregate handler installed")
	}
	return fn(collection, pipeline)
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failWith
}

func (s *Store) Close(context.Context) error { return nil }

// match returns the documents of a collection satisfying the query filters.
// Callers must hold the lock.
func (s *Store) match(collection string, q model.Query) []bson.M {
	var out []bson.M
	for _, d := range s.collections[collection] {
		if matchesFilters(d, q.Filters, q.Mode) {
			out = append(out, d)
		}
	}
	return out
}

func matchesFilters(d bson.M, filters model.Filters, mode model.MatchMode) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		ok := matchesFilter(d, f)
		if mode == model.MatchAny && ok {
			return true
		}
		if mode == model.MatchAll && !ok {
			return false
		}
	}
	return mode == model.MatchAll
}

func matchesFilter(d bson.M, f model.Filter) bool {
	val, exists := d[f.Field]
	switch f.Op {
	case model.OpEq:
		return exists && compareValues(val, f.Value) == 0
	case model.OpNe:
		return !exists || compareValues(val, f.Value) != 0
	case model.OpGt:
		return exists && compareValues(val, f.Value) > 0
	case model.OpGte:
		return exists && compareValues(val, f.Value) >= 0
	case model.OpLt:
		return exists && compareValues(val, f.Value) < 0
	case model.OpLte:
		return exists && compareValues(val, f.Value) <= 0
	case model.OpIn:
		values := reflect.ValueOf(f.Value)
		if !exists || values.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < values.Len(); i++ {
			if compareValues(val, values.Index(i).Interface()) == 0 {
				return true
			}
		}
		return false
	case model.OpRegex:
		pattern, ok := f.Value.(string)
		str, strOK := val.(string)
		if !ok || !strOK {
			return false
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return false
		}
		return re.MatchString(str)
	default:
		return false
	}
}

// compareValues orders two bson values: -1, 0 or 1. Mixed-type comparisons
// fall back to string representation, matching nothing numeric.
func compareValues(a, b any) int {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case primitive.DateTime:
		return float64(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) int64 {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return int64(f)
}

func toBSONMap(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// normalizeBSON runs a value through bson encoding so stored representations
// match what the real backend would hold (e.g. time.Time -> DateTime).
func normalizeBSON(v any) (any, error) {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d["v"], nil
}

func decodeInto(rows []bson.M, out any) error {
	outv := reflect.ValueOf(out)
	if outv.Kind() != reflect.Ptr || outv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("storagetest: out must be a pointer to a slice, got %T", out)
	}

	slicev := outv.Elem()
	elemt := slicev.Type().Elem()
	result := reflect.MakeSlice(slicev.Type(), 0, len(rows))
	for _, r := range rows {
		raw, err := bson.Marshal(r)
		if err != nil {
			return err
		}
		elem := reflect.New(elemt)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slicev.Set(result)
	return nil
}
