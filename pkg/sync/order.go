package sync

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/schemakeeper/pkg/schema"
)

// typeRank orders apply batches so referenced kinds exist before their
// dependents: types and sequences first, then synonyms, tables, code
// objects, views, and triggers.
var typeRank = map[schema.ObjectType]int{
	schema.TypeScalarType: 0,
	schema.TypeTableType:  1,
	schema.TypeSequence:   2,
	schema.TypeSynonym:    3,
	schema.TypeTable:      4,
	schema.TypeFunction:   5,
	schema.TypeProcedure:  6,
	schema.TypeView:       7,
	schema.TypeTrigger:    8,
}

// orderChanges sorts changes for execution. Deletions run first in reverse
// rank order, with table drops placed children before parents using the
// definitions recorded in oldDefs. Upserts follow in rank order, tables
// sorted by foreign key references and views by object references.
func (e *Engine) orderChanges(changes []schema.Object, oldDefs map[schema.Key]*string) ([]schema.Object, error) {
	deletes := make([]schema.Object, 0, len(changes))
	upserts := make([]schema.Object, 0, len(changes))

	for _, change := range changes {
		if change.Definition == nil {
			deletes = append(deletes, change)
		} else {
			upserts = append(upserts, change)
		}
	}

	sort.SliceStable(deletes, func(i, j int) bool {
		if typeRank[deletes[i].Type] != typeRank[deletes[j].Type] {
			return typeRank[deletes[i].Type] > typeRank[deletes[j].Type]
		}

		return deletes[i].Key.String() < deletes[j].Key.String()
	})

	sort.SliceStable(upserts, func(i, j int) bool {
		if typeRank[upserts[i].Type] != typeRank[upserts[j].Type] {
			return typeRank[upserts[i].Type] < typeRank[upserts[j].Type]
		}

		return upserts[i].Key.String() < upserts[j].Key.String()
	})

	err := e.sortTables(deletes, func(obj schema.Object) *string { return oldDefs[obj.Key] }, true)
	if err != nil {
		return nil, err
	}

	err = e.sortTables(upserts, func(obj schema.Object) *string { return obj.Definition }, false)
	if err != nil {
		return nil, err
	}

	if err := e.sortViews(upserts); err != nil {
		return nil, err
	}

	return append(deletes, upserts...), nil
}

// sortTables reorders the TABLE run of objs so referenced tables precede
// referencing ones. With reversed set, dependents come first, the order
// drops need.
func (e *Engine) sortTables(objs []schema.Object, definition func(schema.Object) *string, reversed bool) error {
	start, end := typeRun(objs, schema.TypeTable)
	if end-start < 2 {
		return nil
	}

	group := objs[start:end]
	deps := func(obj schema.Object) []schema.Key {
		def := definition(obj)
		if def == nil {
			return nil
		}

		var keys []schema.Key
		for _, ref := range e.scanner.TableRefs(*def) {
			key := schema.NewKey(schema.TypeTable, ref.Schema, ref.Name)

			// a self-referencing foreign key is satisfied within one table
			if key != obj.Key {
				keys = append(keys, key)
			}
		}

		return keys
	}

	sorted, err := topoSort(group, deps)
	if err != nil {
		return err
	}

	if reversed {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}

	copy(group, sorted)
	return nil
}

// sortViews reorders the VIEW run of objs so a view selecting from another
// view in the same batch comes after it.
func (e *Engine) sortViews(objs []schema.Object) error {
	start, end := typeRun(objs, schema.TypeView)
	if end-start < 2 {
		return nil
	}

	group := objs[start:end]
	deps := func(obj schema.Object) []schema.Key {
		var keys []schema.Key
		for _, ref := range e.scanner.ObjectRefs(*obj.Definition) {
			key := schema.NewKey(schema.TypeView, ref.Schema, ref.Name)
			if key != obj.Key {
				keys = append(keys, key)
			}
		}

		return keys
	}

	sorted, err := topoSort(group, deps)
	if err != nil {
		return err
	}

	copy(group, sorted)
	return nil
}

// typeRun returns the bounds of the contiguous run of t in objs. The slices
// handed to it are rank-sorted, so each type occupies a single run.
func typeRun(objs []schema.Object, t schema.ObjectType) (int, int) {
	start := -1
	for i, obj := range objs {
		if obj.Type == t {
			if start < 0 {
				start = i
			}

			continue
		}

		if start >= 0 {
			return start, i
		}
	}

	if start < 0 {
		return 0, 0
	}

	return start, len(objs)
}

// topoSort arranges group so every dependency of an object appears before
// the object, keeping ascending key order among ties. Dependencies outside
// group are ignored.
func topoSort(group []schema.Object, deps func(schema.Object) []schema.Key) ([]schema.Object, error) {
	byKey := make(map[schema.Key]schema.Object, len(group))
	indegree := make(map[schema.Key]int, len(group))
	for _, obj := range group {
		byKey[obj.Key] = obj
		indegree[obj.Key] = 0
	}

	dependents := make(map[schema.Key][]schema.Key, len(group))
	for _, obj := range group {
		for _, dep := range deps(obj) {
			if _, ok := byKey[dep]; !ok {
				continue
			}

			indegree[obj.Key]++
			dependents[dep] = append(dependents[dep], obj.Key)
		}
	}

	ready := make([]schema.Key, 0, len(group))
	for _, obj := range group {
		if indegree[obj.Key] == 0 {
			ready = append(ready, obj.Key)
		}
	}
	sortKeys(ready)

	sorted := make([]schema.Object, 0, len(group))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		sorted = append(sorted, byKey[key])

		released := false
		for _, dependent := range dependents[key] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
				released = true
			}
		}

		if released {
			sortKeys(ready)
		}
	}

	if len(sorted) != len(group) {
		stuck := make([]string, 0, len(group))
		for key, n := range indegree {
			if n > 0 {
				stuck = append(stuck, key.String())
			}
		}
		sort.Strings(stuck)

		return nil, errors.Wrapf(ErrDependencyCycle, "%s", strings.Join(stuck, ", "))
	}

	return sorted, nil
}

func sortKeys(keys []schema.Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
