package reservation_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showroom/internal/core/apperror"
	"showroom/internal/core/id"
	"showroom/internal/domain"
	"showroom/internal/domain/allotment"
	"showroom/internal/infrastructure/storage/postgres"
)

const allotmentTable = "doc_allotments"

// AllotmentRepo implements allotment.Store.
type AllotmentRepo struct {
	*BaseDocumentRepo[*allotment.Allotment]
}

var _ allotment.Store = (*AllotmentRepo)(nil)

func NewAllotmentRepo(tx *postgres.TxManager) *AllotmentRepo {
	return &AllotmentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			tx,
			allotmentTable,
			postgres.ExtractDBColumns[allotment.Allotment](),
			func() *allotment.Allotment { return &allotment.Allotment{} },
		),
	}
}

// Create inserts the allotment only if no active, non-expired allotment
// holds the same vehicle. A zero-row insert means another claim exists
// and reports CONFLICT. The partial unique index on (vehicle_id) for
// active rows backs this up against concurrent inserts.
func (r *AllotmentRepo) Create(ctx context.Context, a *allotment.Allotment) error {
	cols, vals, err := r.columnValues(a)
	if err != nil {
		return err
	}

	sel := r.Builder().Select()
	for _, val := range vals {
		sel = sel.Column(squirrel.Expr("?", val))
	}
	sel = sel.Where(squirrel.Expr(
		"NOT EXISTS (SELECT 1 FROM "+allotmentTable+
			" WHERE vehicle_id = ? AND status = ? AND valid_until >= ? AND deletion_mark = false)",
		a.VehicleID, allotment.StatusActive, a.Date,
	))

	q := r.Builder().
		Insert(allotmentTable).
		Columns(cols...).
		Select(sel)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapConstraintErr(err, "insert allotment")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict("vehicle is already held by an active allotment").
			WithDetail("vehicleId", a.VehicleID)
	}
	return nil
}

// FindActiveByVehicle returns the active, non-expired allotment holding
// the vehicle.
func (r *AllotmentRepo) FindActiveByVehicle(ctx context.Context, vehicleID id.ID, now time.Time) (*allotment.Allotment, error) {
	a := &allotment.Allotment{}

	q := r.baseSelect().
		Where(squirrel.Eq{"vehicle_id": vehicleID}).
		Where(squirrel.Eq{"status": allotment.StatusActive}).
		Where(squirrel.GtOrEq{"valid_until": now}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("active allotment for vehicle", vehicleID.String())
		}
		return nil, fmt.Errorf("find active by vehicle: %w", err)
	}
	return a, nil
}

// ListExpired returns active allotments whose validity window passed,
// oldest first.
func (r *AllotmentRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*allotment.Allotment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": allotment.StatusActive}).
		Where(squirrel.Lt{"valid_until": now}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("valid_until ASC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*allotment.Allotment
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	return items, nil
}

// List retrieves allotments with filtering and pagination.
func (r *AllotmentRepo) List(ctx context.Context, filter allotment.ListFilter) (domain.ListResult[*allotment.Allotment], error) {
	q := r.baseSelect()
	q = r.ApplyListFilter(q, filter.ListFilter)

	if filter.VehicleID != nil {
		q = q.Where(squirrel.Eq{"vehicle_id": *filter.VehicleID})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	return r.SelectPage(ctx, q, filter.ListFilter)
}
