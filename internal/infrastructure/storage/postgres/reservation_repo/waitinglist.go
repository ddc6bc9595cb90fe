package reservation_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showroom/internal/domain"
	"showroom/internal/domain/waitinglist"
	"showroom/internal/infrastructure/storage/postgres"
)

const waitingListTable = "doc_waiting_list"

// WaitingListRepo implements waitinglist.Store.
type WaitingListRepo struct {
	*BaseDocumentRepo[*waitinglist.Entry]
}

var _ waitinglist.Store = (*WaitingListRepo)(nil)

func NewWaitingListRepo(tx *postgres.TxManager) *WaitingListRepo {
	return &WaitingListRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			tx,
			waitingListTable,
			postgres.ExtractDBColumns[waitinglist.Entry](),
			func() *waitinglist.Entry { return &waitinglist.Entry{} },
		),
	}
}

// MaxPosition returns the highest position among active entries of the
// priority tier, or 0 if the tier is empty. Callers run this inside the
// enrollment transaction; the unique index on (priority, tier_position)
// for active rows turns a lost race into a retriable conflict.
func (r *WaitingListRepo) MaxPosition(ctx context.Context, priority domain.Priority) (int, error) {
	q := r.Builder().
		Select("COALESCE(MAX(tier_position), 0)").
		From(waitingListTable).
		Where(squirrel.Eq{"priority": priority}).
		Where(squirrel.Eq{"status": waitinglist.StatusActive}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var maxPos int
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&maxPos); err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	return maxPos, nil
}

// ListActiveCandidates returns active entries whose stored brand, model
// and vehicle type either match the offer or are wildcards (empty).
// Color, year and price are checked in memory where the flexibility rule
// lives.
func (r *WaitingListRepo) ListActiveCandidates(ctx context.Context, offer waitinglist.VehicleOffer) ([]*waitinglist.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": waitinglist.StatusActive}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{squirrel.Eq{"brand": ""}, squirrel.Eq{"brand": offer.Brand}}).
		Where(squirrel.Or{squirrel.Eq{"model_name": ""}, squirrel.Eq{"model_name": offer.Model}}).
		Where(squirrel.Or{squirrel.Eq{"vehicle_type": ""}, squirrel.Eq{"vehicle_type": offer.VehicleType}}).
		OrderBy("priority ASC", "tier_position ASC", "date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*waitinglist.Entry
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active candidates: %w", err)
	}
	return items, nil
}

// ListStale returns open entries whose next contact date passed before
// olderThan, most overdue first.
func (r *WaitingListRepo) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]*waitinglist.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": []waitinglist.Status{waitinglist.StatusActive, waitinglist.StatusNotified}}).
		Where(squirrel.Lt{"next_contact_date": olderThan}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("next_contact_date ASC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*waitinglist.Entry
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	return items, nil
}

// List retrieves waiting-list entries with filtering and pagination.
func (r *WaitingListRepo) List(ctx context.Context, filter waitinglist.ListFilter) (domain.ListResult[*waitinglist.Entry], error) {
	q := r.baseSelect()
	q = r.ApplyListFilter(q, filter.ListFilter)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Priority != nil {
		q = q.Where(squirrel.Eq{"priority": *filter.Priority})
	}
	if filter.Brand != nil {
		q = q.Where(squirrel.Eq{"brand": *filter.Brand})
	}
	if filter.ModelName != nil {
		q = q.Where(squirrel.Eq{"model_name": *filter.ModelName})
	}

	return r.SelectPage(ctx, q, filter.ListFilter)
}
