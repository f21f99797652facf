package apptest

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/granja-pro/internal/application/ports"
	"github.com/tu-usuario/granja-pro/internal/domain/entity"
)

// Los repositorios devuelven copias (como las filas que devuelve la BD) para
// que las escrituras de los casos de uso solo persistan vía Update*.

// BatchRepo implementación en memoria de repository.StockBatchRepository.
type BatchRepo struct{ store *Store }

// NewBatchRepo construye el repo atado al Store (uso fuera de transacción).
func NewBatchRepo(store *Store) *BatchRepo { return &BatchRepo{store: store} }

func (r *BatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	r.store.nextOrder++
	batch.CreatedOrder = r.store.nextOrder
	cp := *batch
	r.store.Batches[batch.ID] = &cp
	return nil
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.StockBatch, error) {
	b, ok := r.store.Batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) ListAvailable(_ context.Context, farmID, itemID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range r.store.Batches {
		if b.FarmID != farmID || b.ItemID != itemID {
			continue
		}
		if !b.Available().GreaterThan(decimal.Zero) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortFIFO(out)
	return out, nil
}

func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, farmID, itemID string) ([]*entity.StockBatch, error) {
	return r.ListAvailable(ctx, farmID, itemID)
}

func (r *BatchRepo) UpdateQuantities(_ context.Context, batch *entity.StockBatch) error {
	stored, ok := r.store.Batches[batch.ID]
	if !ok {
		return nil
	}
	stored.QuantityUsed = batch.QuantityUsed
	stored.QuantityMutated = batch.QuantityMutated
	return nil
}

func (r *BatchRepo) Delete(_ context.Context, id string) error {
	delete(r.store.Batches, id)
	return nil
}

// EventRepo implementación en memoria de repository.DepletionEventRepository.
type EventRepo struct{ store *Store }

func (r *EventRepo) Create(_ context.Context, event *entity.DepletionEvent) error {
	cp := *event
	r.store.Events[event.ID] = &cp
	return nil
}

func (r *EventRepo) GetByID(_ context.Context, id string) (*entity.DepletionEvent, error) {
	e, ok := r.store.Events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *EventRepo) Update(_ context.Context, event *entity.DepletionEvent) error {
	cp := *event
	r.store.Events[event.ID] = &cp
	return nil
}

func (r *EventRepo) Delete(_ context.Context, id string) error {
	delete(r.store.Events, id)
	return nil
}

func (r *EventRepo) ListByFlock(_ context.Context, flockID string) ([]*entity.DepletionEvent, error) {
	var out []*entity.DepletionEvent
	for _, e := range r.store.Events {
		if e.FlockID == flockID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *EventRepo) SumByFlock(_ context.Context, flockID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.Events {
		if e.FlockID == flockID {
			total = total.Add(e.Quantity)
		}
	}
	return total, nil
}

func (r *EventRepo) DeleteByRecording(_ context.Context, recordingID string) error {
	for id, e := range r.store.Events {
		if e.RecordingID == recordingID {
			delete(r.store.Events, id)
		}
	}
	return nil
}

// FlockRepo implementación en memoria de repository.FlockRepository.
type FlockRepo struct{ store *Store }

// NewFlockRepo construye el repo atado al Store (uso fuera de transacción).
func NewFlockRepo(store *Store) *FlockRepo { return &FlockRepo{store: store} }

func (r *FlockRepo) GetByID(_ context.Context, id string) (*entity.Flock, error) {
	f, ok := r.store.Flocks[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *FlockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Flock, error) {
	return r.GetByID(ctx, id)
}

func (r *FlockRepo) UpdateAggregates(_ context.Context, flock *entity.Flock) error {
	stored, ok := r.store.Flocks[flock.ID]
	if !ok {
		return nil
	}
	stored.QuantityDepletion = flock.QuantityDepletion
	stored.QuantitySales = flock.QuantitySales
	stored.QuantityMutated = flock.QuantityMutated
	return nil
}

func (r *FlockRepo) SumSales(_ context.Context, flockID string) (decimal.Decimal, error) {
	v, ok := r.store.Sales[flockID]
	if !ok {
		return decimal.Zero, nil
	}
	return v, nil
}

func (r *FlockRepo) SumMutated(_ context.Context, flockID string) (decimal.Decimal, error) {
	v, ok := r.store.MutatedBirds[flockID]
	if !ok {
		return decimal.Zero, nil
	}
	return v, nil
}

func (r *FlockRepo) GetState(_ context.Context, flockID string) (*entity.FlockState, error) {
	st, ok := r.store.States[flockID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *FlockRepo) SaveState(_ context.Context, state *entity.FlockState) error {
	cp := *state
	r.store.States[state.FlockID] = &cp
	return nil
}

// MutationRepo implementación en memoria de repository.MutationRepository.
type MutationRepo struct{ store *Store }

func (r *MutationRepo) Create(_ context.Context, mutation *entity.Mutation) error {
	cp := *mutation
	cp.Items = append([]entity.MutationItem(nil), mutation.Items...)
	r.store.Mutations[mutation.ID] = &cp
	return nil
}

func (r *MutationRepo) GetByID(_ context.Context, id string) (*entity.Mutation, error) {
	m, ok := r.store.Mutations[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	cp.Items = append([]entity.MutationItem(nil), m.Items...)
	return &cp, nil
}

func (r *MutationRepo) Delete(_ context.Context, id string) error {
	delete(r.store.Mutations, id)
	return nil
}

// RecordingRepo implementación en memoria de repository.RecordingRepository.
type RecordingRepo struct{ store *Store }

func (r *RecordingRepo) Create(_ context.Context, rec *entity.DailyRecording) error {
	cp := *rec
	r.store.Recordings[rec.ID] = &cp
	return nil
}

func (r *RecordingRepo) GetByID(_ context.Context, id string) (*entity.DailyRecording, error) {
	rec, ok := r.store.Recordings[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *RecordingRepo) Delete(_ context.Context, id string) error {
	delete(r.store.Recordings, id)
	return nil
}

func (r *RecordingRepo) CreateUsage(_ context.Context, usage *entity.ResourceUsage) error {
	cp := *usage
	r.store.Usages[usage.ID] = &cp
	return nil
}

func (r *RecordingRepo) ListUsagesByRecording(_ context.Context, recordingID string) ([]*entity.ResourceUsage, error) {
	var out []*entity.ResourceUsage
	for _, u := range r.store.Usages {
		if u.RecordingID == recordingID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *RecordingRepo) DeleteUsagesByRecording(_ context.Context, recordingID string) error {
	for id, u := range r.store.Usages {
		if u.RecordingID == recordingID {
			delete(r.store.Usages, id)
		}
	}
	return nil
}

// ItemRepo implementación en memoria de repository.ItemRepository.
type ItemRepo struct{ store *Store }

// NewItemRepo construye el repo de catálogo.
func NewItemRepo(store *Store) *ItemRepo { return &ItemRepo{store: store} }

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := r.store.Items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, id := range ids {
		if it, ok := r.store.Items[id]; ok {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

// FarmRepo implementación en memoria de repository.FarmRepository.
type FarmRepo struct{ store *Store }

// NewFarmRepo construye el repo de catálogo.
func NewFarmRepo(store *Store) *FarmRepo { return &FarmRepo{store: store} }

func (r *FarmRepo) GetByID(_ context.Context, id string) (*entity.Farm, error) {
	f, ok := r.store.Farms[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

// QueueSpy implementación de ports.TaskQueue que captura las tareas encoladas
// sin ejecutarlas. RunAll las ejecuta bajo demanda.
type QueueSpy struct {
	Tasks []ports.Task
	// Fail fuerza el fallo del Enqueue para probar backpressure.
	Fail error
}

// Enqueue implementa ports.TaskQueue.
func (q *QueueSpy) Enqueue(_ context.Context, task ports.Task) error {
	if q.Fail != nil {
		return q.Fail
	}
	q.Tasks = append(q.Tasks, task)
	return nil
}

// RunAll ejecuta las tareas capturadas en orden y las descarta.
func (q *QueueSpy) RunAll(ctx context.Context) []error {
	var errs []error
	for _, t := range q.Tasks {
		if err := t.Run(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	q.Tasks = nil
	return errs
}
