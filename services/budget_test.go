package services

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lifeonloan/wealth-api/models"
)

// memoryStore is an in-memory BudgetStore for pipeline tests.
type memoryStore struct {
	mu        sync.Mutex
	records   []models.BudgetRecord
	insertErr error
}

func (m *memoryStore) Insert(ctx context.Context, record *models.BudgetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryStore) FindRecent(ctx context.Context, userID string, limit int) ([]models.BudgetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BudgetRecord
	for _, record := range m.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) FindByID(ctx context.Context, userID, id string) (*models.BudgetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.ID == id && record.UserID == userID {
			r := record
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

type stubRenderer struct {
	artifact string
	err      error
}

func (r stubRenderer) RenderAllocation(essential, discretionary float64) (string, error) {
	return r.artifact, r.err
}

func newTestService(store *memoryStore, advice AdviceService) *BudgetService {
	return NewBudgetService(
		store,
		NewAggregator(false),
		stubRenderer{artifact: "data:image/png;base64,cGll"},
		NewAdviceClient(advice),
	)
}

func TestSubmitAssemblesRecord(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "Looks healthy."})

	record, err := svc.Submit(context.Background(), "user-1", map[string]string{
		"tuition":       "500",
		"housing":       "800",
		"entertainment": "100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID == "" {
		t.Error("record has no id")
	}
	if record.UserID != "user-1" {
		t.Errorf("user id = %q", record.UserID)
	}
	if record.CreatedAt.IsZero() {
		t.Error("record has no timestamp")
	}
	if record.TotalEssential != 1300 || record.TotalDiscretionary != 100 || record.TotalExpenses != 1400 {
		t.Errorf("totals = %v/%v/%v", record.TotalEssential, record.TotalDiscretionary, record.TotalExpenses)
	}
	if record.Advice != "Looks healthy." {
		t.Errorf("advice = %q", record.Advice)
	}
	if record.Visualization != "data:image/png;base64,cGll" {
		t.Errorf("visualization = %q", record.Visualization)
	}

	// Internal consistency: stored grand total equals the sum of the
	// stored per-category values.
	var sum float64
	for _, amount := range record.Essential {
		sum += amount
	}
	for _, amount := range record.Discretionary {
		sum += amount
	}
	if sum != record.TotalExpenses {
		t.Errorf("sum of stored inputs %v != stored grand total %v", sum, record.TotalExpenses)
	}

	if len(store.records) != 1 {
		t.Fatalf("store has %d records, want 1", len(store.records))
	}
}

func TestSubmitInvalidAmountPersistsNothing(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "unused"})

	_, err := svc.Submit(context.Background(), "user-1", map[string]string{"tuition": "abc"})

	var invalid *InvalidAmountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
	if _, ok := invalid.Reasons["tuition"]; !ok {
		t.Errorf("error does not name tuition: %v", invalid.Reasons)
	}
	if len(store.records) != 0 {
		t.Errorf("store has %d records, want 0", len(store.records))
	}
}

func TestSubmitAdviceFailureStillProducesRecord(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{err: errors.New("network down")})

	record, err := svc.Submit(context.Background(), "user-1", map[string]string{"food": "120"})
	if err != nil {
		t.Fatalf("advice failure must not fail the pipeline: %v", err)
	}
	if record.Advice != AdviceFailedMessage {
		t.Errorf("advice = %q, want the fallback message", record.Advice)
	}
	if record.Visualization == "" {
		t.Error("visualization missing")
	}
	if len(store.records) != 1 {
		t.Errorf("store has %d records, want 1", len(store.records))
	}
}

func TestSubmitAllZero(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, nil)

	record, err := svc.Submit(context.Background(), "user-1", map[string]string{})
	if err != nil {
		t.Fatalf("all-zero submission must succeed: %v", err)
	}
	if record.TotalExpenses != 0 {
		t.Errorf("grand total = %v, want 0", record.TotalExpenses)
	}
	if record.Advice != AdviceNotConfiguredMessage {
		t.Errorf("advice = %q, want the not-configured message", record.Advice)
	}
	if record.Visualization == "" {
		t.Error("visualization must still be produced")
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("disk full")}
	svc := newTestService(store, &stubAdviceService{text: "ok"})

	record, err := svc.Submit(context.Background(), "user-1", map[string]string{"food": "10"})
	if err == nil {
		t.Fatal("store failure must fail the submission")
	}
	if record != nil {
		t.Error("no record may be returned when the write did not complete")
	}
}

func TestGetByIDOwnership(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "ok"})

	mine, err := svc.Submit(context.Background(), "user-1", map[string]string{"food": "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), "user-2", mine.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("another user's lookup returned %v, want ErrNotFound", err)
	}

	if _, err := svc.GetByID(context.Background(), "user-1", "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id returned %v, want ErrNotFound", err)
	}
}

func TestGetByIDMalformedID(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "ok"})

	// Ids that are not UUIDs never reach the store: bound against a UUID
	// column they would error instead of simply not matching.
	cases := []string{"not-a-uuid", "42", "6ba7b810-9dad-11d1-80b4", ""}
	for _, id := range cases {
		if _, err := svc.GetByID(context.Background(), "user-1", id); !errors.Is(err, ErrNotFound) {
			t.Errorf("id %q returned %v, want ErrNotFound", id, err)
		}
	}

	// A well-formed but absent UUID is NotFound too.
	absent := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	if _, err := svc.GetByID(context.Background(), "user-1", absent); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent uuid returned %v, want ErrNotFound", err)
	}
}

func TestSubmitRoundTrip(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "ok"})

	submitted, err := svc.Submit(context.Background(), "user-1", map[string]string{
		"tuition": "500.25",
		"hobbies": "19.99",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fetched, err := svc.GetByID(context.Background(), "user-1", submitted.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(submitted, fetched) {
		t.Errorf("round-trip mismatch:\nsubmitted %+v\nfetched   %+v", submitted, fetched)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store, &stubAdviceService{text: "ok"})

	var ids []string
	for _, amount := range []string{"10", "20", "30"} {
		record, err := svc.Submit(context.Background(), "user-1", map[string]string{"food": amount})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, record.ID)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := svc.GetAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("history has %d records, want 3", len(all))
	}
	for i, record := range all {
		if want := ids[len(ids)-1-i]; record.ID != want {
			t.Errorf("history[%d] = %s, want %s", i, record.ID, want)
		}
	}

	recent, err := svc.GetRecent(context.Background(), "user-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent has %d records, want 2", len(recent))
	}
	if recent[0].ID != ids[2] || recent[1].ID != ids[1] {
		t.Errorf("recent order wrong: %s, %s", recent[0].ID, recent[1].ID)
	}
}
