package mapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

var (
	_ EmployeeMapper     = (*SQLEmployeeMapper)(nil)
	_ EmployeeMapperPlus = (*SQLEmployeeMapperPlus)(nil)
	_ DepartmentMapper   = (*SQLDepartmentMapper)(nil)
)

// SQLEmployeeMapper runs the employee statements against a bun database or
// transaction.
type SQLEmployeeMapper struct {
	db bun.IDB
}

// NewSQLEmployeeMapper returns a mapper that queries db directly.
func NewSQLEmployeeMapper(db bun.IDB) *SQLEmployeeMapper {
	return &SQLEmployeeMapper{db: db}
}

// GetEmpsByNameLikeReturnMap returns employees whose last name matches pattern, keyed by id.
func (m *SQLEmployeeMapper) GetEmpsByNameLikeReturnMap(ctx context.Context, pattern string) (map[int64]*Employee, error) {
	emps, err := m.GetEmpsByNameLike(ctx, pattern)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*Employee, len(emps))
	for _, e := range emps {
		out[e.ID] = e
	}
	return out, nil
}

// GetEmpByIDReturnMap returns one employee row as a column map.
func (m *SQLEmployeeMapper) GetEmpByIDReturnMap(ctx context.Context, id int64) (map[string]any, error) {
	var row map[string]any
	err := m.db.NewSelect().
		Model((*Employee)(nil)).
		Column("id", "last_name", "gender", "email").
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetEmpsByNameLike returns employees whose last name matches pattern.
func (m *SQLEmployeeMapper) GetEmpsByNameLike(ctx context.Context, pattern string) ([]*Employee, error) {
	var emps []*Employee
	err := m.db.NewSelect().
		Model(&emps).
		Where("e.last_name LIKE ?", pattern).
		OrderExpr("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return emps, nil
}

// GetEmpByMap filters on the id and lastName entries of params.
func (m *SQLEmployeeMapper) GetEmpByMap(ctx context.Context, params map[string]any) (*Employee, error) {
	err := validation.Validate(params,
		validation.Required,
		validation.Map(
			validation.Key("id", validation.Required),
			validation.Key("lastName", validation.Required).Optional(),
		).AllowExtraKeys(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	id, err := toInt64(params["id"])
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrInvalidParams, err)
	}

	q := m.db.NewSelect().Model((*Employee)(nil)).Where("e.id = ?", id)
	if lastName, ok := params["lastName"]; ok {
		q = q.Where("e.last_name = ?", fmt.Sprint(lastName))
	}
	return m.scanOne(ctx, q)
}

// GetEmpByIDAndLastName returns the employee matching both values.
func (m *SQLEmployeeMapper) GetEmpByIDAndLastName(ctx context.Context, id int64, lastName string) (*Employee, error) {
	q := m.db.NewSelect().
		Model((*Employee)(nil)).
		Where("e.id = ?", id).
		Where("e.last_name = ?", lastName)
	return m.scanOne(ctx, q)
}

// GetEmpByID returns the employee with id, or nil when there is none.
func (m *SQLEmployeeMapper) GetEmpByID(ctx context.Context, id int64) (*Employee, error) {
	return m.scanOne(ctx, m.db.NewSelect().Model((*Employee)(nil)).Where("e.id = ?", id))
}

// AddEmp inserts emp, sets its generated id and returns the affected row count.
func (m *SQLEmployeeMapper) AddEmp(ctx context.Context, emp *Employee) (int64, error) {
	res, err := m.db.NewInsert().Model(emp).Exec(ctx)
	if err != nil {
		return 0, err
	}
	if emp.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		emp.ID = id
	}
	return res.RowsAffected()
}

// UpdateEmp updates emp by id and reports whether a row changed.
func (m *SQLEmployeeMapper) UpdateEmp(ctx context.Context, emp *Employee) (bool, error) {
	res, err := m.db.NewUpdate().
		Model(emp).
		Column("last_name", "gender", "email").
		WherePK().
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEmpByID deletes the employee with id.
func (m *SQLEmployeeMapper) DeleteEmpByID(ctx context.Context, id int64) error {
	_, err := m.db.NewDelete().
		Model((*Employee)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// scanOne scans q into a fresh employee. No row yields nil, nil.
func (m *SQLEmployeeMapper) scanOne(ctx context.Context, q *bun.SelectQuery) (*Employee, error) {
	emp := new(Employee)
	err := q.Model(emp).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// SQLEmployeeMapperPlus resolves departments either with a join or with a
// second query through a DepartmentMapper.
type SQLEmployeeMapperPlus struct {
	db    bun.IDB
	emps  *SQLEmployeeMapper
	depts DepartmentMapper
}

// NewSQLEmployeeMapperPlus builds the mapper. depts runs the second step of
// GetEmpByIDSteps; pass a cached mapper to share department lookups.
func NewSQLEmployeeMapperPlus(db bun.IDB, depts DepartmentMapper) *SQLEmployeeMapperPlus {
	if depts == nil {
		depts = NewSQLDepartmentMapper(db)
	}
	return &SQLEmployeeMapperPlus{db: db, emps: NewSQLEmployeeMapper(db), depts: depts}
}

// GetEmpByIDSteps loads an employee, then its department through depts.
func (m *SQLEmployeeMapperPlus) GetEmpByIDSteps(ctx context.Context, id int64) (*Employee, error) {
	emp, err := m.emps.GetEmpByID(ctx, id)
	if err != nil || emp == nil {
		return emp, err
	}
	if emp.DeptID == 0 {
		return emp, nil
	}
	dept, err := m.depts.GetDeptByID(ctx, emp.DeptID)
	if err != nil {
		return nil, err
	}
	emp.Dept = dept
	return emp, nil
}

// GetEmpWithDeptByID loads an employee and its department with one join.
func (m *SQLEmployeeMapperPlus) GetEmpWithDeptByID(ctx context.Context, id int64) (*Employee, error) {
	emp := new(Employee)
	err := m.db.NewSelect().
		Model(emp).
		Relation("Dept").
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// GetEmpByID returns the employee with id, or nil when there is none.
func (m *SQLEmployeeMapperPlus) GetEmpByID(ctx context.Context, id int64) (*Employee, error) {
	return m.emps.GetEmpByID(ctx, id)
}

// DeptOf resolves the department of emp through depts.
func (m *SQLEmployeeMapperPlus) DeptOf(ctx context.Context, emp *Employee) (*Department, error) {
	if emp == nil || emp.DeptID == 0 {
		return nil, nil
	}
	return m.depts.GetDeptByID(ctx, emp.DeptID)
}

// SQLDepartmentMapper runs the department statements.
type SQLDepartmentMapper struct {
	db bun.IDB
}

// NewSQLDepartmentMapper returns a mapper that queries db directly.
func NewSQLDepartmentMapper(db bun.IDB) *SQLDepartmentMapper {
	return &SQLDepartmentMapper{db: db}
}

// GetDeptByID returns the department with id, or nil when there is none.
func (m *SQLDepartmentMapper) GetDeptByID(ctx context.Context, id int64) (*Department, error) {
	dept := new(Department)
	err := m.db.NewSelect().Model(dept).Where("d.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dept, nil
}

// GetDeptByIDPlus returns a department with its employees loaded.
func (m *SQLDepartmentMapper) GetDeptByIDPlus(ctx context.Context, id int64) (*Department, error) {
	dept := new(Department)
	err := m.db.NewSelect().
		Model(dept).
		Relation("Emps", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("e.id ASC")
		}).
		Where("d.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dept, nil
}

// AddDept inserts dept, sets its generated id and returns the affected row count.
func (m *SQLDepartmentMapper) AddDept(ctx context.Context, dept *Department) (int64, error) {
	res, err := m.db.NewInsert().Model(dept).Exec(ctx)
	if err != nil {
		return 0, err
	}
	if dept.ID == 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		dept.ID = id
	}
	return res.RowsAffected()
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case string:
		var id int64
		if _, err := fmt.Sscan(n, &id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
