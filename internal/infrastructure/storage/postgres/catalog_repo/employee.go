package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"showroom/internal/domain"
	"showroom/internal/domain/catalogs/employee"
	"showroom/internal/infrastructure/storage/postgres"
)

const employeeTable = "cat_employees"

// EmployeeRepo implements employee.Repository.
type EmployeeRepo struct {
	*BaseCatalogRepo[*employee.Employee]
}

var _ employee.Repository = (*EmployeeRepo)(nil)

func NewEmployeeRepo(tx *postgres.TxManager) *EmployeeRepo {
	return &EmployeeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			tx,
			employeeTable,
			postgres.ExtractDBColumns[employee.Employee](),
			func() *employee.Employee { return &employee.Employee{} },
		),
	}
}

// ListByRole retrieves employees with the given role.
func (r *EmployeeRepo) ListByRole(ctx context.Context, role employee.Role, filter domain.ListFilter) (domain.ListResult[*employee.Employee], error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"role": role})
	q = r.ApplyListFilter(q, filter)

	return r.SelectPage(ctx, q, filter)
}
