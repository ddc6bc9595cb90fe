package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showroom/internal/core/apperror"
	"showroom/internal/core/clock"
	"showroom/internal/core/id"
	"showroom/internal/core/numerator"
	"showroom/internal/core/types"
	"showroom/internal/domain"
	"showroom/internal/domain/allotment"
	"showroom/internal/domain/waitinglist"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// --- Fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAllotmentStore struct {
	byID map[id.ID]*allotment.Allotment

	// conflictsLeft makes the next N Creates fail with CONFLICT.
	conflictsLeft int
	creates       int
}

func newFakeAllotmentStore() *fakeAllotmentStore {
	return &fakeAllotmentStore{byID: make(map[id.ID]*allotment.Allotment)}
}

func (f *fakeAllotmentStore) Create(ctx context.Context, a *allotment.Allotment) error {
	f.creates++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return apperror.NewConflict("vehicle already has an active allotment")
	}
	for _, existing := range f.byID {
		if existing.VehicleID == a.VehicleID && existing.IsActive(testNow) {
			return apperror.NewConflict("vehicle already has an active allotment")
		}
	}
	stored := *a
	f.byID[a.ID] = &stored
	return nil
}

func (f *fakeAllotmentStore) GetByID(ctx context.Context, allotmentID id.ID) (*allotment.Allotment, error) {
	a, ok := f.byID[allotmentID]
	if !ok {
		return nil, apperror.NewNotFound("Allotment", allotmentID.String())
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAllotmentStore) GetByNumber(ctx context.Context, number string) (*allotment.Allotment, error) {
	for _, a := range f.byID {
		if a.Number == number {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("Allotment", number)
}

func (f *fakeAllotmentStore) Update(ctx context.Context, a *allotment.Allotment) error {
	stored, ok := f.byID[a.ID]
	if !ok {
		return apperror.NewNotFound("Allotment", a.ID.String())
	}
	if stored.Version != a.Version {
		return apperror.NewConcurrentModification("Allotment", a.ID.String())
	}
	a.Version++
	copied := *a
	f.byID[a.ID] = &copied
	return nil
}

func (f *fakeAllotmentStore) Delete(ctx context.Context, allotmentID id.ID) error {
	delete(f.byID, allotmentID)
	return nil
}

func (f *fakeAllotmentStore) FindActiveByVehicle(ctx context.Context, vehicleID id.ID, now time.Time) (*allotment.Allotment, error) {
	for _, a := range f.byID {
		if a.VehicleID == vehicleID && a.IsActive(now) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("Allotment", vehicleID.String())
}

func (f *fakeAllotmentStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]*allotment.Allotment, error) {
	var out []*allotment.Allotment
	for _, a := range f.byID {
		if a.Status == allotment.StatusActive && a.IsExpired(now) {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAllotmentStore) List(ctx context.Context, filter allotment.ListFilter) (domain.ListResult[*allotment.Allotment], error) {
	var items []*allotment.Allotment
	for _, a := range f.byID {
		copied := *a
		items = append(items, &copied)
	}
	return domain.ListResult[*allotment.Allotment]{Items: items, TotalCount: int64(len(items))}, nil
}

type fakeWaitingListStore struct {
	byID map[id.ID]*waitinglist.Entry

	// failNextUpdate makes the next Update fail once.
	failNextUpdate error
}

func newFakeWaitingListStore() *fakeWaitingListStore {
	return &fakeWaitingListStore{byID: make(map[id.ID]*waitinglist.Entry)}
}

func (f *fakeWaitingListStore) Create(ctx context.Context, e *waitinglist.Entry) error {
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeWaitingListStore) GetByID(ctx context.Context, entryID id.ID) (*waitinglist.Entry, error) {
	e, ok := f.byID[entryID]
	if !ok {
		return nil, apperror.NewNotFound("WaitingList", entryID.String())
	}
	copied := *e
	return &copied, nil
}

func (f *fakeWaitingListStore) GetByNumber(ctx context.Context, number string) (*waitinglist.Entry, error) {
	for _, e := range f.byID {
		if e.Number == number {
			copied := *e
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("WaitingList", number)
}

func (f *fakeWaitingListStore) Update(ctx context.Context, e *waitinglist.Entry) error {
	if f.failNextUpdate != nil {
		err := f.failNextUpdate
		f.failNextUpdate = nil
		return err
	}
	stored, ok := f.byID[e.ID]
	if !ok {
		return apperror.NewNotFound("WaitingList", e.ID.String())
	}
	if stored.Version != e.Version {
		return apperror.NewConcurrentModification("WaitingList", e.ID.String())
	}
	e.Version++
	copied := *e
	f.byID[e.ID] = &copied
	return nil
}

func (f *fakeWaitingListStore) Delete(ctx context.Context, entryID id.ID) error {
	delete(f.byID, entryID)
	return nil
}

func (f *fakeWaitingListStore) MaxPosition(ctx context.Context, priority domain.Priority) (int, error) {
	maxPos := 0
	for _, e := range f.byID {
		if e.Priority == priority && e.Status == waitinglist.StatusActive && e.Position > maxPos {
			maxPos = e.Position
		}
	}
	return maxPos, nil
}

func (f *fakeWaitingListStore) ListActiveCandidates(ctx context.Context, offer waitinglist.VehicleOffer) ([]*waitinglist.Entry, error) {
	var out []*waitinglist.Entry
	for _, e := range f.byID {
		if e.Status == waitinglist.StatusActive {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeWaitingListStore) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*waitinglist.Entry, error) {
	return nil, nil
}

func (f *fakeWaitingListStore) List(ctx context.Context, filter waitinglist.ListFilter) (domain.ListResult[*waitinglist.Entry], error) {
	var items []*waitinglist.Entry
	for _, e := range f.byID {
		copied := *e
		items = append(items, &copied)
	}
	return domain.ListResult[*waitinglist.Entry]{Items: items, TotalCount: int64(len(items))}, nil
}

// --- Test harness ---

type harness struct {
	coordinator *Coordinator
	allotments  *fakeAllotmentStore
	waitingList *fakeWaitingListStore
	wlService   *waitinglist.Service
	altService  *allotment.Service
}

func newHarness(t *testing.T, policy Policy) *harness {
	t.Helper()

	altStore := newFakeAllotmentStore()
	wlStore := newFakeWaitingListStore()
	txm := fakeTxManager{}
	clk := clock.Fixed(testNow)
	gen := &numerator.MockGenerator{}

	altService := allotment.NewService(altStore, gen, txm, clk, nil)
	wlService := waitinglist.NewService(wlStore, gen, txm, clk, nil)

	return &harness{
		coordinator: NewCoordinator(altService, wlService, clk, policy),
		allotments:  altStore,
		waitingList: wlStore,
		wlService:   wlService,
		altService:  altService,
	}
}

func (h *harness) enroll(t *testing.T, priority domain.Priority, criteria waitinglist.Criteria) *waitinglist.Entry {
	t.Helper()
	e, err := h.wlService.Enroll(context.Background(), waitinglist.NewParams{
		CustomerID: id.New(),
		Criteria:   criteria,
		Priority:   priority,
		CreatedBy:  "user-1",
	})
	require.NoError(t, err)
	return e
}

func testOffer() waitinglist.VehicleOffer {
	return waitinglist.VehicleOffer{
		VehicleID:   id.New(),
		Brand:       "Toyota",
		Model:       "Corolla",
		VehicleType: "sedan",
		Color:       "Red",
		Year:        2026,
		Price:       types.MustMoney("25000"),
	}
}

// --- Tests ---

func TestOfferVehicle_CreatesAllotmentAndConvertsEntry(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	entry := h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{Brand: "Toyota"})
	offer := testOffer()

	result, err := h.coordinator.OfferVehicle(ctx, OfferParams{
		Offer:         offer,
		SalesPersonID: id.New(),
		CreatedBy:     "user-1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Allotment)

	a := result.Allotment
	assert.Equal(t, allotment.StatusActive, a.Status)
	assert.Equal(t, allotment.TypePriority, a.Type)
	assert.Equal(t, entry.CustomerID, a.CustomerID)
	assert.Equal(t, offer.VehicleID, a.VehicleID)
	assert.Equal(t, domain.PriorityHigh, a.Priority)
	assert.Equal(t, testNow.Add(DefaultPolicy().DefaultValidity), a.ValidUntil)

	converted, err := h.wlService.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitinglist.StatusConverted, converted.Status)
	require.NotNil(t, converted.AllotmentID)
	assert.Equal(t, a.ID, *converted.AllotmentID)
}

func TestOfferVehicle_PicksHighestPriority(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	h.enroll(t, domain.PriorityMedium, waitinglist.Criteria{ModelName: "Corolla"})
	highEntry := h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{ModelName: "Corolla"})

	result, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Allotment)
	assert.Equal(t, highEntry.CustomerID, result.Allotment.CustomerID)
}

// A vehicle with an existing active allotment is already claimed: no-op.
func TestOfferVehicle_VehicleAlreadyClaimed(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	offer := testOffer()

	first, err := h.coordinator.OfferVehicle(ctx, OfferParams{Offer: offer, SalesPersonID: id.New()})
	require.NoError(t, err)
	require.NotNil(t, first.Allotment)

	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	second, err := h.coordinator.OfferVehicle(ctx, OfferParams{Offer: offer, SalesPersonID: id.New()})
	require.NoError(t, err)
	assert.Nil(t, second.Allotment)
	assert.Nil(t, second.Notified)
	assert.Equal(t, 1, h.allotments.creates)
}

func TestOfferVehicle_NoEligibleEntry(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{Brand: "Honda"})

	result, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Allotment)
	assert.Equal(t, 0, h.allotments.creates)
}

func TestOfferVehicle_NotifyFirstPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.NotifyBeforeAllotment = true
	h := newHarness(t, policy)
	entry := h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})

	result, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Allotment)
	require.NotNil(t, result.Notified)
	assert.Equal(t, entry.ID, result.Notified.ID)
	require.NotNil(t, result.Notified.LastContactDate)
	assert.Equal(t, waitinglist.StatusConverted, result.Notified.Status)
}

// If the waiting-list write fails after the allotment write, the
// allotment is cancelled so no dangling claim survives.
func TestOfferVehicle_CompensatesOnSecondWriteFailure(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})

	h.waitingList.failNextUpdate = apperror.NewInternal(assert.AnError)

	_, err := h.coordinator.OfferVehicle(ctx, OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.Error(t, err)

	require.Equal(t, 1, len(h.allotments.byID))
	for _, a := range h.allotments.byID {
		assert.Equal(t, allotment.StatusCancelled, a.Status)
	}
}

func TestOfferVehicle_RetriesOnceOnConflict(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	h.allotments.conflictsLeft = 1

	result, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Allotment)
	assert.Equal(t, 2, h.allotments.creates)
}

func TestOfferVehicle_SurfacesConflictAfterRetries(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	h.allotments.conflictsLeft = 5

	_, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, 2, h.allotments.creates)
}

func TestOfferVehicle_UsesAssignedSalesPerson(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	assigned := id.New()
	e, err := h.wlService.Enroll(context.Background(), waitinglist.NewParams{
		CustomerID: id.New(),
		Priority:   domain.PriorityHigh,
		AssignedTo: &assigned,
		CreatedBy:  "user-1",
	})
	require.NoError(t, err)
	_ = e

	result, err := h.coordinator.OfferVehicle(context.Background(), OfferParams{
		Offer:         testOffer(),
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Allotment)
	assert.Equal(t, assigned, result.Allotment.SalesPersonID)
}

func TestConvertAllotmentToOrder(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})

	offered, err := h.coordinator.OfferVehicle(ctx, OfferParams{Offer: testOffer(), SalesPersonID: id.New()})
	require.NoError(t, err)
	require.NotNil(t, offered.Allotment)

	a, err := h.coordinator.ConvertAllotmentToOrder(ctx, offered.Allotment.ID, "ORD-77")
	require.NoError(t, err)
	assert.Equal(t, allotment.StatusConverted, a.Status)
	assert.Equal(t, "ORD-77", a.OrderID)
	require.NotNil(t, a.ConversionDate)
}

func TestConvertAllotmentToOrder_NotFound(t *testing.T) {
	h := newHarness(t, DefaultPolicy())

	_, err := h.coordinator.ConvertAllotmentToOrder(context.Background(), id.New(), "ORD-1")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCancelAllotment(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})

	offered, err := h.coordinator.OfferVehicle(ctx, OfferParams{Offer: testOffer(), SalesPersonID: id.New()})
	require.NoError(t, err)
	require.NotNil(t, offered.Allotment)

	a, err := h.coordinator.CancelAllotment(ctx, offered.Allotment.ID, "customer withdrew", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, allotment.StatusCancelled, a.Status)

	// The vehicle is claimable again after cancellation.
	h.enroll(t, domain.PriorityMedium, waitinglist.Criteria{})
	again, err := h.coordinator.OfferVehicle(ctx, OfferParams{
		Offer:         waitinglist.VehicleOffer{VehicleID: a.VehicleID, Brand: "Toyota", Model: "Corolla", Color: "Red", Year: 2026, Price: types.MustMoney("25000")},
		SalesPersonID: id.New(),
	})
	require.NoError(t, err)
	assert.NotNil(t, again.Allotment)
}

// Enrollments into the same tier get strictly increasing positions.
func TestEnroll_PositionsUniquePerTier(t *testing.T) {
	h := newHarness(t, DefaultPolicy())

	seen := make(map[int]bool)
	for i := 0; i < 5; i++ {
		e := h.enroll(t, domain.PriorityMedium, waitinglist.Criteria{})
		assert.False(t, seen[e.Position], "position %d assigned twice", e.Position)
		seen[e.Position] = true
		assert.Equal(t, i+1, e.Position)
	}

	// A different tier starts its own sequence.
	other := h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	assert.Equal(t, 1, other.Position)
}

func TestReprioritize_AppendsAtNewTierTail(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()

	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	h.enroll(t, domain.PriorityHigh, waitinglist.Criteria{})
	moved := h.enroll(t, domain.PriorityLow, waitinglist.Criteria{})

	got, err := h.wlService.Reprioritize(ctx, moved.ID, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, 3, got.Position)
}
