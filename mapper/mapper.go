package mapper

import (
	"context"
	"errors"
)

// ErrInvalidParams is returned when a parameter map is missing required keys.
var ErrInvalidParams = errors.New("mapper: invalid params")

// EmployeeMapper holds the single-table employee statements. Single row reads
// return a nil employee, not an error, when no row matches.
type EmployeeMapper interface {
	// GetEmpsByNameLikeReturnMap returns matching employees keyed by id.
	GetEmpsByNameLikeReturnMap(ctx context.Context, pattern string) (map[int64]*Employee, error)
	// GetEmpByIDReturnMap returns one row as a column to value map.
	GetEmpByIDReturnMap(ctx context.Context, id int64) (map[string]any, error)
	GetEmpsByNameLike(ctx context.Context, pattern string) ([]*Employee, error)
	// GetEmpByMap reads "id" and, when present, "lastName" from params.
	GetEmpByMap(ctx context.Context, params map[string]any) (*Employee, error)
	GetEmpByIDAndLastName(ctx context.Context, id int64, lastName string) (*Employee, error)
	GetEmpByID(ctx context.Context, id int64) (*Employee, error)
	// AddEmp inserts emp, sets its ID and returns the number of rows inserted.
	AddEmp(ctx context.Context, emp *Employee) (int64, error)
	// UpdateEmp reports whether a row was changed.
	UpdateEmp(ctx context.Context, emp *Employee) (bool, error)
	DeleteEmpByID(ctx context.Context, id int64) error
}

// EmployeeMapperPlus holds the statements that resolve an employee's
// department.
type EmployeeMapperPlus interface {
	// GetEmpByIDSteps loads the employee, then its department with a second query.
	GetEmpByIDSteps(ctx context.Context, id int64) (*Employee, error)
	// GetEmpWithDeptByID loads the employee and department with one join.
	GetEmpWithDeptByID(ctx context.Context, id int64) (*Employee, error)
	GetEmpByID(ctx context.Context, id int64) (*Employee, error)
	// DeptOf runs the second step on demand for an employee loaded without it.
	DeptOf(ctx context.Context, emp *Employee) (*Department, error)
}

// DepartmentMapper holds the department statements.
type DepartmentMapper interface {
	GetDeptByID(ctx context.Context, id int64) (*Department, error)
	// GetDeptByIDPlus loads the department with its employees.
	GetDeptByIDPlus(ctx context.Context, id int64) (*Department, error)
	AddDept(ctx context.Context, dept *Department) (int64, error)
}
