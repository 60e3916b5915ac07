package pagination

import "testing"

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: -3}
	p.Validate()
	if p.Page != 1 || p.PerPage != 15 {
		t.Fatalf("expected defaults 1/15, got %d/%d", p.Page, p.PerPage)
	}

	p = &PaginationParams{Page: 2, PerPage: 500}
	p.Validate()
	if p.PerPage != 100 {
		t.Fatalf("expected per_page capped at 100, got %d", p.PerPage)
	}
}

func TestOffset(t *testing.T) {
	p := &PaginationParams{Page: 3, PerPage: 15}
	if got := p.Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
}

func TestNewPagination(t *testing.T) {
	pag := NewPagination(2, 10, 25)
	if pag.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", pag.TotalPages)
	}
	if !pag.HasNext || !pag.HasPrev {
		t.Fatalf("page 2 of 3 must have both neighbors, got next=%v prev=%v",
			pag.HasNext, pag.HasPrev)
	}

	last := NewPagination(3, 10, 25)
	if last.HasNext {
		t.Fatal("last page must not report a next page")
	}
}
