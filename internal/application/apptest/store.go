// Package apptest provee un backend en memoria para los tests de los casos de
// uso: repositorios falsos sobre un Store compartido y un TxRunner que simula
// Commit/Rollback con snapshots. Sin base de datos.
package apptest

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// Store es el estado completo del backend en memoria.
type Store struct {
	Batches    map[string]*entity.StockBatch
	Events     map[string]*entity.DepletionEvent
	Flocks     map[string]*entity.Flock
	States     map[string]*entity.FlockState
	Mutations  map[string]*entity.Mutation
	Recordings map[string]*entity.DailyRecording
	Usages     map[string]*entity.ResourceUsage
	Items      map[string]*entity.Item
	Farms      map[string]*entity.Farm

	// Sumas externas al motor (tablas de ventas y traslados de aves)
	Sales        map[string]decimal.Decimal
	MutatedBirds map[string]decimal.Decimal

	nextOrder int64
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		Batches:      make(map[string]*entity.StockBatch),
		Events:       make(map[string]*entity.DepletionEvent),
		Flocks:       make(map[string]*entity.Flock),
		States:       make(map[string]*entity.FlockState),
		Mutations:    make(map[string]*entity.Mutation),
		Recordings:   make(map[string]*entity.DailyRecording),
		Usages:       make(map[string]*entity.ResourceUsage),
		Items:        make(map[string]*entity.Item),
		Farms:        make(map[string]*entity.Farm),
		Sales:        make(map[string]decimal.Decimal),
		MutatedBirds: make(map[string]decimal.Decimal),
	}
}

// AddFarm registra una granja de catálogo.
func (s *Store) AddFarm(id, name string) *entity.Farm {
	f := &entity.Farm{ID: id, Name: name, CreatedAt: time.Now()}
	s.Farms[id] = f
	return f
}

// AddItem registra un ítem de catálogo.
func (s *Store) AddItem(id, name, category string) *entity.Item {
	it := &entity.Item{ID: id, Name: name, Category: category, Unit: "kg", CreatedAt: time.Now()}
	s.Items[id] = it
	return it
}

// AddFlock registra una parvada.
func (s *Store) AddFlock(id, farmID string, initial decimal.Decimal) *entity.Flock {
	fl := &entity.Flock{
		ID:              id,
		FarmID:          farmID,
		Name:            "Parvada " + id,
		InitialQuantity: initial,
		EntryDate:       time.Now(),
		CreatedAt:       time.Now(),
	}
	s.Flocks[id] = fl
	return fl
}

// AddBatch registra un lote asignando la secuencia de creación, igual que el
// repositorio real.
func (s *Store) AddBatch(id, farmID, itemID string, entryDate time.Time, in, unitCost decimal.Decimal) *entity.StockBatch {
	s.nextOrder++
	b := &entity.StockBatch{
		ID:              id,
		FarmID:          farmID,
		ItemID:          itemID,
		EntryDate:       entryDate,
		CreatedOrder:    s.nextOrder,
		QuantityIn:      in,
		QuantityUsed:    decimal.Zero,
		QuantityMutated: decimal.Zero,
		UnitCost:        unitCost,
		CreatedAt:       time.Now(),
	}
	s.Batches[id] = b
	return b
}

// Batch devuelve el lote almacenado (el estado confirmado, no una copia).
func (s *Store) Batch(id string) *entity.StockBatch { return s.Batches[id] }

// sortFIFO ordena lotes por (entry_date ASC, created_order ASC), igual que el
// selector SQL.
func sortFIFO(batches []*entity.StockBatch) {
	sort.Slice(batches, func(i, j int) bool {
		if batches[i].EntryDate.Equal(batches[j].EntryDate) {
			return batches[i].CreatedOrder < batches[j].CreatedOrder
		}
		return batches[i].EntryDate.Before(batches[j].EntryDate)
	})
}

// clone copia profunda del estado transaccional (todo menos los catálogos, que
// los casos de uso no escriben).
func (s *Store) clone() *Store {
	c := NewStore()
	c.nextOrder = s.nextOrder
	for id, b := range s.Batches {
		cp := *b
		c.Batches[id] = &cp
	}
	for id, e := range s.Events {
		cp := *e
		c.Events[id] = &cp
	}
	for id, f := range s.Flocks {
		cp := *f
		c.Flocks[id] = &cp
	}
	for id, st := range s.States {
		cp := *st
		c.States[id] = &cp
	}
	for id, m := range s.Mutations {
		cp := *m
		cp.Items = append([]entity.MutationItem(nil), m.Items...)
		c.Mutations[id] = &cp
	}
	for id, r := range s.Recordings {
		cp := *r
		cp.FeedLines = append([]entity.UsageLine(nil), r.FeedLines...)
		cp.SupplyLines = append([]entity.UsageLine(nil), r.SupplyLines...)
		c.Recordings[id] = &cp
	}
	for id, u := range s.Usages {
		cp := *u
		c.Usages[id] = &cp
	}
	c.Items = s.Items
	c.Farms = s.Farms
	for id, v := range s.Sales {
		c.Sales[id] = v
	}
	for id, v := range s.MutatedBirds {
		c.MutatedBirds[id] = v
	}
	return c
}

// restore vuelve al snapshot (rollback).
func (s *Store) restore(snap *Store) {
	s.Batches = snap.Batches
	s.Events = snap.Events
	s.Flocks = snap.Flocks
	s.States = snap.States
	s.Mutations = snap.Mutations
	s.Recordings = snap.Recordings
	s.Usages = snap.Usages
	s.Sales = snap.Sales
	s.MutatedBirds = snap.MutatedBirds
	s.nextOrder = snap.nextOrder
}

// Repos devuelve los repositorios falsos atados a este Store.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Batches:    &BatchRepo{store: s},
		Events:     &EventRepo{store: s},
		Flocks:     &FlockRepo{store: s},
		Mutations:  &MutationRepo{store: s},
		Recordings: &RecordingRepo{store: s},
	}
}

// TxRunner simula la transacción: toma un snapshot del Store, ejecuta fn con
// repositorios atados al Store vivo y restaura el snapshot si fn falla. Así los
// tests pueden afirmar que una falla no deja escritura alguna.
type TxRunner struct {
	store *Store
	// Runs cuenta las transacciones abiertas (commit o rollback).
	Runs int
}

// NewTxRunner construye el runner sobre el Store dado.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run implementa ports.TxRunner.
func (t *TxRunner) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	t.Runs++
	snap := t.store.clone()
	if err := fn(t.store.Repos()); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
