package allotment

import (
	"context"
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

func validParams() NewParams {
	return NewParams{
		VehicleID:         id.New(),
		CustomerID:        id.New(),
		SalesPersonID:     id.New(),
		ValidUntil:        testNow.Add(7 * 24 * time.Hour),
		Type:              TypeReservation,
		Priority:          domain.PriorityMedium,
		ReservationAmount: types.MustMoney("500"),
		CreatedBy:         "user-1",
	}
}

func TestNew(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, a.Status)
	assert.False(t, a.ReservationPaid)
	assert.False(t, a.ConvertedToOrder)
	assert.Equal(t, testNow, a.Date)
	assert.Equal(t, 1, a.Version)
}

func TestNew_ValidUntilInPast(t *testing.T) {
	p := validParams()
	p.ValidUntil = testNow.Add(-time.Hour)

	_, err := New(p, testNow)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestNew_ValidUntilEqualsNow(t *testing.T) {
	p := validParams()
	p.ValidUntil = testNow

	_, err := New(p, testNow)
	assert.Error(t, err)
}

func TestNew_NegativeReservationAmount(t *testing.T) {
	p := validParams()
	p.ReservationAmount = types.MustMoney("-1")

	_, err := New(p, testNow)
	assert.Error(t, err)
}

// Full happy path: pay reservation in cash, then convert to a sales order.
func TestPayAndConvert(t *testing.T) {
	p := validParams()
	p.ReservationAmount = types.MustMoney("500")
	a, err := New(p, testNow)
	require.NoError(t, err)

	require.NoError(t, a.MarkReservationPaid("Cash", ""))
	assert.True(t, a.ReservationPaid)
	assert.Equal(t, "Cash", a.PaymentMethod)

	convertedAt := testNow.Add(time.Hour)
	require.NoError(t, a.ConvertToOrder("ORD-1", convertedAt))

	assert.Equal(t, StatusConverted, a.Status)
	assert.True(t, a.ConvertedToOrder)
	assert.Equal(t, "ORD-1", a.OrderID)
	require.NotNil(t, a.ConversionDate)
	assert.Equal(t, convertedAt, *a.ConversionDate)

	// Converted state satisfies the full invariant
	assert.NoError(t, a.Validate(context.Background()))
}

func TestConvertToOrder_Expired(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	afterExpiry := a.ValidUntil.Add(time.Minute)
	err = a.ConvertToOrder("ORD-1", afterExpiry)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestCancel(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	require.NoError(t, a.Cancel("customer withdrew", "manager-1", testNow.Add(time.Hour)))

	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "customer withdrew", a.CancellationReason)
	assert.Equal(t, "manager-1", a.CancelledBy)
	require.NotNil(t, a.CancelledDate)
}

func TestCancel_MissingReason(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	err = a.Cancel("", "manager-1", testNow)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

// Create → Cancel → ConvertToOrder must fail: cancelled is terminal.
func TestConvertAfterCancel(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	require.NoError(t, a.Cancel("duplicate request", "manager-1", testNow))

	err = a.ConvertToOrder("ORD-2", testNow)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, StatusCancelled, a.Status)
}

func TestCancelAfterConvert(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	require.NoError(t, a.ConvertToOrder("ORD-1", testNow))

	err = a.Cancel("changed mind", "manager-1", testNow)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestExtend(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	extended := a.ValidUntil.Add(3 * 24 * time.Hour)
	require.NoError(t, a.Extend(extended))
	assert.Equal(t, extended, a.ValidUntil)
}

func TestExtend_EarlierDate(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	err = a.Extend(a.ValidUntil.Add(-24 * time.Hour))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestExtend_SameDate(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	assert.Error(t, a.Extend(a.ValidUntil))
}

func TestExpire(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	// Not yet overdue: no-op
	changed, err := a.Expire(testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, StatusActive, a.Status)

	// Past validity window
	afterExpiry := a.ValidUntil.Add(time.Minute)
	changed, err = a.Expire(afterExpiry)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusExpired, a.Status)
}

// Expiring an already-expired allotment is a no-op, not an error.
func TestExpire_Idempotent(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	afterExpiry := a.ValidUntil.Add(time.Minute)
	changed, err := a.Expire(afterExpiry)
	require.NoError(t, err)
	require.True(t, changed)

	snapshot := *a
	changed, err = a.Expire(afterExpiry.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, snapshot, *a)
}

func TestExpire_ConvertedFails(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)
	require.NoError(t, a.ConvertToOrder("ORD-1", testNow))

	_, err = a.Expire(a.ValidUntil.Add(time.Minute))
	assert.True(t, apperror.IsInvalidState(err))
}

func TestPredicates(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	assert.True(t, a.IsActive(testNow))
	assert.True(t, a.CanBeConverted(testNow))
	assert.True(t, a.CanBeCancelled())
	assert.True(t, a.CanBeExtended())

	afterExpiry := a.ValidUntil.Add(time.Minute)
	assert.True(t, a.IsExpired(afterExpiry))
	assert.False(t, a.IsActive(afterExpiry))
	assert.False(t, a.CanBeConverted(afterExpiry))
}

func TestMarkReservationPaid_NotActive(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)
	require.NoError(t, a.Cancel("test", "manager-1", testNow))

	err = a.MarkReservationPaid("Cash", "")
	assert.True(t, apperror.IsInvalidState(err))
}

func TestValidate_ConversionConsistency(t *testing.T) {
	a, err := New(validParams(), testNow)
	require.NoError(t, err)

	// Converted status without order data violates the invariant
	a.Status = StatusConverted
	assert.Error(t, a.Validate(context.Background()))

	a.ConvertedToOrder = true
	a.OrderID = "ORD-9"
	conversionDate := testNow
	a.ConversionDate = &conversionDate
	assert.NoError(t, a.Validate(context.Background()))
}
