package mapper

import "github.com/uptrace/bun"

// Collection names used for cache keys and invalidation.
const (
	CollectionEmp  = "emp"
	CollectionDept = "dept"
)

// Employee maps tbl_employee. Dept is only populated by the joined and
// stepwise queries.
type Employee struct {
	bun.BaseModel `bun:"table:tbl_employee,alias:e" json:"-" msgpack:"-"`

	ID       int64       `bun:"id,pk,autoincrement" json:"id" msgpack:"id"`
	LastName string      `bun:"last_name" json:"last_name" msgpack:"last_name"`
	Gender   string      `bun:"gender" json:"gender" msgpack:"gender"`
	Email    string      `bun:"email" json:"email" msgpack:"email"`
	DeptID   int64       `bun:"d_id,nullzero" json:"d_id,omitempty" msgpack:"d_id,omitempty"`
	Dept     *Department `bun:"rel:belongs-to,join:d_id=id" json:"dept,omitempty" msgpack:"dept,omitempty"`
}

// Department maps tbl_dept.
type Department struct {
	bun.BaseModel `bun:"table:tbl_dept,alias:d" json:"-" msgpack:"-"`

	ID       int64       `bun:"id,pk,autoincrement" json:"id" msgpack:"id"`
	DeptName string      `bun:"dept_name" json:"dept_name" msgpack:"dept_name"`
	Emps     []*Employee `bun:"rel:has-many,join:id=d_id" json:"emps,omitempty" msgpack:"emps,omitempty"`
}
