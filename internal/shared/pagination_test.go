package shared

import "testing"

func TestNewPaginationNormalises(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("normalised pagination = %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", p.TotalPages)
	}
	if p.Offset() != 0 {
		t.Fatalf("offset = %d", p.Offset())
	}
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(3, 10, 100)
	if p.Offset() != 20 {
		t.Fatalf("offset = %d, want 20", p.Offset())
	}
	if p.TotalPages != 10 {
		t.Fatalf("total pages = %d", p.TotalPages)
	}
}
