package waitinglist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/core/types"
	"showroom/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func moneyPtr(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func testOffer() VehicleOffer {
	return VehicleOffer{
		VehicleID:   id.New(),
		Brand:       "Toyota",
		Model:       "Corolla",
		VehicleType: "sedan",
		Color:       "Red",
		Year:        2026,
		Price:       types.MustMoney("25000"),
	}
}

func newEntry(t *testing.T, c Criteria, priority domain.Priority) *Entry {
	t.Helper()
	e, err := New(NewParams{
		CustomerID: id.New(),
		Criteria:   c,
		Priority:   priority,
		CreatedBy:  "user-1",
	}, testNow)
	require.NoError(t, err)
	return e
}

func TestEligibleFor(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		offer    func(VehicleOffer) VehicleOffer
		want     bool
	}{
		{
			name:     "no criteria matches anything",
			criteria: Criteria{},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     true,
		},
		{
			name:     "brand match",
			criteria: Criteria{Brand: "Toyota"},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     true,
		},
		{
			name:     "brand mismatch",
			criteria: Criteria{Brand: "Honda"},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "model mismatch",
			criteria: Criteria{ModelName: "Camry"},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "vehicle type mismatch",
			criteria: Criteria{VehicleType: "suv"},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "color mismatch strict",
			criteria: Criteria{PreferredColor: "Red"},
			offer: func(o VehicleOffer) VehicleOffer {
				o.Color = "Blue"
				return o
			},
			want: false,
		},
		{
			name:     "color mismatch flexible",
			criteria: Criteria{PreferredColor: "Red", IsFlexible: true},
			offer: func(o VehicleOffer) VehicleOffer {
				o.Color = "Blue"
				return o
			},
			want: true,
		},
		{
			name:     "year mismatch strict",
			criteria: Criteria{PreferredYear: intPtr(2025)},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "year mismatch flexible",
			criteria: Criteria{PreferredYear: intPtr(2025), IsFlexible: true},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     true,
		},
		{
			name:     "price below min",
			criteria: Criteria{MinPrice: moneyPtr("30000")},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "price above max",
			criteria: Criteria{MaxPrice: moneyPtr("20000")},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "price within bounds",
			criteria: Criteria{MinPrice: moneyPtr("20000"), MaxPrice: moneyPtr("30000")},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     true,
		},
		{
			name:     "price at max boundary",
			criteria: Criteria{MaxPrice: moneyPtr("25000")},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     true,
		},
		{
			// Flexibility never loosens the price bounds
			name:     "flexible does not loosen price",
			criteria: Criteria{MaxPrice: moneyPtr("20000"), IsFlexible: true},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
		{
			name:     "flexible does not loosen brand",
			criteria: Criteria{Brand: "Honda", IsFlexible: true},
			offer:    func(o VehicleOffer) VehicleOffer { return o },
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(t, tt.criteria, domain.PriorityMedium)
			assert.Equal(t, tt.want, e.EligibleFor(tt.offer(testOffer())))
		})
	}
}

func TestEligibleFor_NotActive(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityHigh)
	require.NoError(t, e.Cancel("test", "manager-1"))

	assert.False(t, e.EligibleFor(testOffer()))
}

// Two entries for the same model, Medium and High: High wins.
func TestFindBestMatch_PriorityWins(t *testing.T) {
	x := newEntry(t, Criteria{ModelName: "Corolla"}, domain.PriorityMedium)
	x.Position = 1
	y := newEntry(t, Criteria{ModelName: "Corolla"}, domain.PriorityHigh)
	y.Position = 5

	best := FindBestMatch([]*Entry{x, y}, testOffer())
	require.NotNil(t, best)
	assert.Equal(t, y.ID, best.ID)
}

func TestFindBestMatch_PositionBreaksTie(t *testing.T) {
	a := newEntry(t, Criteria{}, domain.PriorityHigh)
	a.Position = 2
	b := newEntry(t, Criteria{}, domain.PriorityHigh)
	b.Position = 1

	best := FindBestMatch([]*Entry{a, b}, testOffer())
	require.NotNil(t, best)
	assert.Equal(t, b.ID, best.ID)
}

func TestFindBestMatch_EntryDateBreaksTie(t *testing.T) {
	later, err := New(NewParams{
		CustomerID: id.New(),
		Priority:   domain.PriorityHigh,
		CreatedBy:  "user-1",
	}, testNow.Add(time.Hour))
	require.NoError(t, err)
	later.Position = 3

	earlier, err := New(NewParams{
		CustomerID: id.New(),
		Priority:   domain.PriorityHigh,
		CreatedBy:  "user-1",
	}, testNow)
	require.NoError(t, err)
	earlier.Position = 3

	best := FindBestMatch([]*Entry{later, earlier}, testOffer())
	require.NotNil(t, best)
	assert.Equal(t, earlier.ID, best.ID)
}

func TestFindBestMatch_NoEligible(t *testing.T) {
	e := newEntry(t, Criteria{Brand: "Honda"}, domain.PriorityHigh)
	assert.Nil(t, FindBestMatch([]*Entry{e}, testOffer()))
	assert.Nil(t, FindBestMatch(nil, testOffer()))
}

// Same entry set and offer always select the same entry, regardless of
// slice order.
func TestFindBestMatch_Deterministic(t *testing.T) {
	entries := []*Entry{
		newEntry(t, Criteria{}, domain.PriorityLow),
		newEntry(t, Criteria{}, domain.PriorityHigh),
		newEntry(t, Criteria{}, domain.PriorityMedium),
		newEntry(t, Criteria{}, domain.PriorityHigh),
	}
	for i, e := range entries {
		e.Position = i + 1
	}
	offer := testOffer()

	want := FindBestMatch(entries, offer)
	require.NotNil(t, want)

	reversed := []*Entry{entries[3], entries[2], entries[1], entries[0]}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want.ID, FindBestMatch(entries, offer).ID)
		assert.Equal(t, want.ID, FindBestMatch(reversed, offer).ID)
	}
}

func TestNotify(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityMedium)

	require.NoError(t, e.Notify(testNow))
	assert.Equal(t, StatusNotified, e.Status)
	require.NotNil(t, e.LastContactDate)
	assert.Equal(t, testNow, *e.LastContactDate)

	// Notifying twice is invalid
	assert.True(t, apperror.IsInvalidState(e.Notify(testNow)))
}

func TestConvertToAllotment(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityHigh)
	allotmentID := id.New()

	require.NoError(t, e.ConvertToAllotment(allotmentID, testNow))
	assert.Equal(t, StatusConverted, e.Status)
	assert.True(t, e.ConvertedToAllotment)
	require.NotNil(t, e.AllotmentID)
	assert.Equal(t, allotmentID, *e.AllotmentID)
}

// A notified entry still converts: notification precedes allocation
// under the acknowledge-first policy.
func TestConvertToAllotment_FromNotified(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityHigh)
	require.NoError(t, e.Notify(testNow))

	assert.NoError(t, e.ConvertToAllotment(id.New(), testNow))
}

func TestConvertToAllotment_AlreadyConverted(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityHigh)
	require.NoError(t, e.ConvertToAllotment(id.New(), testNow))

	err := e.ConvertToAllotment(id.New(), testNow)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCancel_Terminal(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityLow)
	require.NoError(t, e.Cancel("moved away", "manager-1"))

	assert.True(t, apperror.IsInvalidState(e.ConvertToAllotment(id.New(), testNow)))
	assert.True(t, apperror.IsInvalidState(e.Cancel("again", "manager-1")))
}

func TestExpire_Idempotent(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityLow)

	changed, err := e.Expire()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusExpired, e.Status)

	changed, err = e.Expire()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRecordContact(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityMedium)
	e.ContactFrequency = 14

	require.NoError(t, e.RecordContact("phone", testNow))
	require.NotNil(t, e.LastContactDate)
	assert.Equal(t, "phone", e.ContactMethod)
	require.NotNil(t, e.NextContactDate)
	assert.Equal(t, testNow.AddDate(0, 0, 14), *e.NextContactDate)
}

func TestMoveToTier(t *testing.T) {
	e := newEntry(t, Criteria{}, domain.PriorityLow)
	e.Position = 4

	require.NoError(t, e.MoveToTier(domain.PriorityHigh, 7))
	assert.Equal(t, domain.PriorityHigh, e.Priority)
	assert.Equal(t, 7, e.Position)
}

func TestNew_InvalidPriceBounds(t *testing.T) {
	_, err := New(NewParams{
		CustomerID: id.New(),
		Criteria:   Criteria{MinPrice: moneyPtr("30000"), MaxPrice: moneyPtr("20000")},
		Priority:   domain.PriorityMedium,
	}, testNow)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
