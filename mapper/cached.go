package mapper

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/tiered"
)

var (
	_ EmployeeMapper     = (*CachedEmployeeMapper)(nil)
	_ EmployeeMapperPlus = (*CachedEmployeeMapperPlus)(nil)
	_ DepartmentMapper   = (*CachedDepartmentMapper)(nil)
)

// CachedEmployeeMapper serves employee reads from a session's cache tiers.
// Statement names double as cache key statements.
type CachedEmployeeMapper struct {
	base    EmployeeMapper
	session *tiered.Session
}

// NewCachedEmployeeMapper wraps base so its reads go through session.
func NewCachedEmployeeMapper(base EmployeeMapper, session *tiered.Session) *CachedEmployeeMapper {
	return &CachedEmployeeMapper{base: base, session: session}
}

// GetEmpsByNameLikeReturnMap returns matching employees keyed by id, cached per pattern.
func (m *CachedEmployeeMapper) GetEmpsByNameLikeReturnMap(ctx context.Context, pattern string) (map[int64]*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpsByNameLikeReturnMap", pattern)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (map[int64]*Employee, error) {
		return m.base.GetEmpsByNameLikeReturnMap(ctx, pattern)
	})
}

// GetEmpByIDReturnMap returns one employee row as a column map, cached per id.
func (m *CachedEmployeeMapper) GetEmpByIDReturnMap(ctx context.Context, id int64) (map[string]any, error) {
	key := cache.NewKey(CollectionEmp, "getEmpByIdReturnMap", id)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (map[string]any, error) {
		return m.base.GetEmpByIDReturnMap(ctx, id)
	})
}

// GetEmpsByNameLike returns employees whose last name matches pattern, cached per pattern.
func (m *CachedEmployeeMapper) GetEmpsByNameLike(ctx context.Context, pattern string) ([]*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpsByNameLike", pattern)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) ([]*Employee, error) {
		return m.base.GetEmpsByNameLike(ctx, pattern)
	})
}

// GetEmpByMap looks an employee up by the id and lastName entries of params.
func (m *CachedEmployeeMapper) GetEmpByMap(ctx context.Context, params map[string]any) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpByMap", params)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpByMap(ctx, params)
	})
}

// GetEmpByIDAndLastName returns the employee matching both values.
func (m *CachedEmployeeMapper) GetEmpByIDAndLastName(ctx context.Context, id int64, lastName string) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpByIdAndLastName", id, lastName)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpByIDAndLastName(ctx, id, lastName)
	})
}

// GetEmpByID returns the employee with id, or nil when there is none.
func (m *CachedEmployeeMapper) GetEmpByID(ctx context.Context, id int64) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpById", id)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpByID(ctx, id)
	})
}

// AddEmp inserts emp and invalidates the employee collection. Departments
// cached with their employees are invalidated too.
func (m *CachedEmployeeMapper) AddEmp(ctx context.Context, emp *Employee) (int64, error) {
	var n int64
	err := m.session.Mutate(ctx, func(ctx context.Context) error {
		var err error
		n, err = m.base.AddEmp(ctx, emp)
		return err
	}, CollectionEmp)
	return n, err
}

// UpdateEmp updates emp and invalidates the employee collection on success.
func (m *CachedEmployeeMapper) UpdateEmp(ctx context.Context, emp *Employee) (bool, error) {
	var ok bool
	err := m.session.Mutate(ctx, func(ctx context.Context) error {
		var err error
		ok, err = m.base.UpdateEmp(ctx, emp)
		return err
	}, CollectionEmp)
	return ok, err
}

// DeleteEmpByID deletes an employee and invalidates the employee collection on success.
func (m *CachedEmployeeMapper) DeleteEmpByID(ctx context.Context, id int64) error {
	return m.session.Mutate(ctx, func(ctx context.Context) error {
		return m.base.DeleteEmpByID(ctx, id)
	}, CollectionEmp)
}

// CachedEmployeeMapperPlus caches the department-resolving statements. Joined
// and stepwise results depend on both collections.
type CachedEmployeeMapperPlus struct {
	base    EmployeeMapperPlus
	depts   DepartmentMapper
	session *tiered.Session
}

// NewCachedEmployeeMapperPlus wraps base. depts serves DeptOf, normally the
// cached department mapper of the same session.
func NewCachedEmployeeMapperPlus(base EmployeeMapperPlus, depts DepartmentMapper, session *tiered.Session) *CachedEmployeeMapperPlus {
	return &CachedEmployeeMapperPlus{base: base, depts: depts, session: session}
}

// GetEmpByIDSteps loads an employee and then its department with a second query.
func (m *CachedEmployeeMapperPlus) GetEmpByIDSteps(ctx context.Context, id int64) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpByIdSteps", id).WithRelated(CollectionDept)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpByIDSteps(ctx, id)
	})
}

// GetEmpWithDeptByID loads an employee and its department with one join.
func (m *CachedEmployeeMapperPlus) GetEmpWithDeptByID(ctx context.Context, id int64) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpWithDeptById", id).WithRelated(CollectionDept)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpWithDeptByID(ctx, id)
	})
}

// GetEmpByID shares its cache entries with CachedEmployeeMapper.GetEmpByID.
func (m *CachedEmployeeMapperPlus) GetEmpByID(ctx context.Context, id int64) (*Employee, error) {
	key := cache.NewKey(CollectionEmp, "getEmpById", id)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Employee, error) {
		return m.base.GetEmpByID(ctx, id)
	})
}

// DeptOf resolves the department through depts. The employee is not modified.
func (m *CachedEmployeeMapperPlus) DeptOf(ctx context.Context, emp *Employee) (*Department, error) {
	if emp == nil || emp.DeptID == 0 {
		return nil, nil
	}
	return m.depts.GetDeptByID(ctx, emp.DeptID)
}

// CachedDepartmentMapper caches department reads.
type CachedDepartmentMapper struct {
	base    DepartmentMapper
	session *tiered.Session
}

// NewCachedDepartmentMapper wraps base so its reads go through session.
func NewCachedDepartmentMapper(base DepartmentMapper, session *tiered.Session) *CachedDepartmentMapper {
	return &CachedDepartmentMapper{base: base, session: session}
}

// GetDeptByID returns the department with id, or nil when there is none.
func (m *CachedDepartmentMapper) GetDeptByID(ctx context.Context, id int64) (*Department, error) {
	key := cache.NewKey(CollectionDept, "getDeptById", id)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Department, error) {
		return m.base.GetDeptByID(ctx, id)
	})
}

// GetDeptByIDPlus returns a department with its employees. Employee writes invalidate it.
func (m *CachedDepartmentMapper) GetDeptByIDPlus(ctx context.Context, id int64) (*Department, error) {
	key := cache.NewKey(CollectionDept, "getDeptByIdPlus", id).WithRelated(CollectionEmp)
	return tiered.Lookup(ctx, m.session, key, func(ctx context.Context) (*Department, error) {
		return m.base.GetDeptByIDPlus(ctx, id)
	})
}

// AddDept inserts dept and invalidates the department collection on success.
func (m *CachedDepartmentMapper) AddDept(ctx context.Context, dept *Department) (int64, error) {
	var n int64
	err := m.session.Mutate(ctx, func(ctx context.Context) error {
		var err error
		n, err = m.base.AddDept(ctx, dept)
		return err
	}, CollectionDept)
	return n, err
}

// Mappers bundles the cached mappers of one session.
type Mappers struct {
	Employees     *CachedEmployeeMapper
	EmployeesPlus *CachedEmployeeMapperPlus
	Departments   *CachedDepartmentMapper
}

// NewSessionMappers wires cached mappers over db-backed implementations for
// session. The stepwise employee query resolves its department through the
// cached department mapper, so both steps share the session's tiers.
func NewSessionMappers(db bun.IDB, session *tiered.Session) *Mappers {
	depts := NewCachedDepartmentMapper(NewSQLDepartmentMapper(db), session)
	return &Mappers{
		Employees:     NewCachedEmployeeMapper(NewSQLEmployeeMapper(db), session),
		EmployeesPlus: NewCachedEmployeeMapperPlus(NewSQLEmployeeMapperPlus(db, depts), depts, session),
		Departments:   depts,
	}
}
