package repositorycache

import "testing"

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"TestUser", "test_user"},
		{"Employee", "employee"},
		{"HTTPServer", "http_server"},
		{"userID", "user_id"},
		{"Dept2Emp", "dept_2_emp"},
		{"already_snake", "already_snake"},
		{"*models.User", "models_user"},
		{"Page[int]", "page_int"},
		{"  spaced--name  ", "spaced_name"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := toSnake(tt.in); got != tt.want {
				t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollectionFor(t *testing.T) {
	if got := collectionFor[TestUser](); got != "test_user" {
		t.Errorf("collectionFor[TestUser]() = %q", got)
	}
	if got := collectionFor[*TestUser](); got != "test_user" {
		t.Errorf("collectionFor[*TestUser]() = %q", got)
	}
	if got := collectionFor[[]*TestUser](); got != "test_user" {
		t.Errorf("collectionFor[[]*TestUser]() = %q", got)
	}
}
