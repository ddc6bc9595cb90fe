package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"showroom/internal/domain"
	"showroom/internal/domain/catalogs/vehicle"
	"showroom/internal/infrastructure/storage/postgres"
)

const vehicleTable = "cat_vehicles"

// VehicleRepo implements vehicle.Repository.
type VehicleRepo struct {
	*BaseCatalogRepo[*vehicle.Vehicle]
}

var _ vehicle.Repository = (*VehicleRepo)(nil)

func NewVehicleRepo(tx *postgres.TxManager) *VehicleRepo {
	return &VehicleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			tx,
			vehicleTable,
			postgres.ExtractDBColumns[vehicle.Vehicle](),
			func() *vehicle.Vehicle { return &vehicle.Vehicle{} },
		),
	}
}

// FindByVIN retrieves a vehicle by VIN.
func (r *VehicleRepo) FindByVIN(ctx context.Context, vin string) (*vehicle.Vehicle, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"vin": vin}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListByStatus retrieves vehicles in the given inventory state.
func (r *VehicleRepo) ListByStatus(ctx context.Context, status vehicle.Status, filter domain.ListFilter) (domain.ListResult[*vehicle.Vehicle], error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": status})
	q = r.ApplyListFilter(q, filter)

	return r.SelectPage(ctx, q, filter)
}
