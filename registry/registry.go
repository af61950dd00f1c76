// Package registry keeps the per-isolation-domain mapping from easing name to definition.
//
// Names move from absent to defined exactly once; a second registration under the
// same name is rejected with easing.ErrAlreadyDefined. Lookups of absent names are a
// normal outcome, and the registry remembers who asked so that the invalidation
// notifier can be told once the name is defined.
//
// Storage is go-memdb: lookups read immutable snapshots and never block writers,
// while registrations and request tracking are serialized write transactions.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/shared/helper"
)

// Registry maps names to validated definitions for one isolation domain.
type Registry struct {
	db *memdb.MemDB
}

// New creates an empty registry.
func New() (*Registry, error) {
	db, err := memdb.NewMemDB(newSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create registry store: %w", err)
	}
	return &Registry{db: db}, nil
}

// Register validates def and inserts it.
//
// The pending records for the name are drained in the same write transaction and
// returned only after the transaction has committed, so every returned record
// refers to a definition that subsequent lookups already resolve.
func (r *Registry) Register(def easing.Definition) ([]Pending, error) {
	if err := easing.Validate(def); err != nil {
		return nil, err
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableDefinitions, indexID, def.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", def.Name, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", easing.ErrAlreadyDefined, def.Name)
	}

	row := &definitionRow{Name: def.Name, Def: cloneDefinition(def)}
	if err := txn.Insert(tableDefinitions, row); err != nil {
		return nil, fmt.Errorf("failed to insert %q: %w", def.Name, err)
	}

	it, err := txn.Get(tablePending, indexName, def.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending requests of %q: %w", def.Name, err)
	}
	drained := collectPending(it)
	if _, err := txn.DeleteAll(tablePending, indexName, def.Name); err != nil {
		return nil, fmt.Errorf("failed to clear pending requests of %q: %w", def.Name, err)
	}

	txn.Commit()
	return drained, nil
}

// Lookup returns the definition registered under name. It never fails;
// an absent name is reported with ok == false.
func (r *Registry) Lookup(name string) (easing.Definition, bool) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	row, ok := helper.GetTypedValueOf2[*definitionRow](func() (any, bool) {
		raw, err := txn.First(tableDefinitions, indexID, name)
		return raw, err == nil
	})
	if !ok {
		return easing.Definition{}, false
	}
	return cloneDefinition(row.Def), true
}

// Track records that name was requested while undefined.
//
// It returns false, recording nothing, when the name is already defined at the
// time of the write; such a request never enters the invalidation path.
func (r *Registry) Track(name string, consumer easing.ConsumerHandle, args []easing.Token) bool {
	txn := r.db.Txn(true)
	defer txn.Abort()

	if raw, err := txn.First(tableDefinitions, indexID, name); err != nil || raw != nil {
		return false
	}

	key := pendingKey(name, consumer)
	next := &Pending{Key: key, Name: name, Consumer: consumer, ArgsKey: renderTokens(args), Requests: 1}
	if prev, ok := helper.GetTypedValueOf2[*Pending](func() (any, bool) {
		raw, err := txn.First(tablePending, indexID, key)
		return raw, err == nil
	}); ok {
		// rows are immutable; store an updated copy
		updated := *prev
		updated.Requests++
		next = &updated
	}
	if err := txn.Insert(tablePending, next); err != nil {
		return false
	}
	txn.Commit()
	return true
}

// Pending lists the undefined-request records of name.
func (r *Registry) Pending(name string) []Pending {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tablePending, indexName, name)
	if err != nil {
		return nil
	}
	return collectPending(it)
}

// Names returns the defined names in lexical order.
func (r *Registry) Names() []string {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableDefinitions, indexID)
	if err != nil {
		return nil
	}
	rows := helper.CollectTyped[*definitionRow](it.Next)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined names.
func (r *Registry) Len() int {
	return len(r.Names())
}

// WaitDefined blocks until name is defined or ctx is done.
func (r *Registry) WaitDefined(ctx context.Context, name string) error {
	for {
		txn := r.db.Txn(false)
		watchCh, raw, err := txn.FirstWatch(tableDefinitions, indexID, name)
		txn.Abort()
		if err != nil {
			return fmt.Errorf("failed to watch %q: %w", name, err)
		}
		if raw != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-watchCh:
		}
	}
}

func collectPending(it memdb.ResultIterator) []Pending {
	rows := helper.CollectTyped[*Pending](it.Next)
	out := make([]Pending, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}

func cloneDefinition(def easing.Definition) easing.Definition {
	params := make([]easing.Param, len(def.Params))
	for i, p := range def.Params {
		p.Default = cloneFloat(p.Default)
		p.Min = cloneFloat(p.Min)
		p.Max = cloneFloat(p.Max)
		params[i] = p
	}
	def.Params = params
	return def
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return easing.Float(*v)
}

func renderTokens(args []easing.Token) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
