package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	var p PageRequest
	p.Defaults()
	if p.Page != 1 || p.PageSize != 20 {
		t.Errorf("expected page 1 size 20, got page %d size %d", p.Page, p.PageSize)
	}
	if p.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset())
	}

	p = PageRequest{Page: 3, PageSize: 10}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 0)
	if resp.Data == nil {
		t.Error("expected empty slice, got nil")
	}
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 pages, got %d", resp.TotalPages)
	}

	resp = NewPageResponse([]int{1, 2}, 2, 2, 5)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}

	mapped := Map(resp, func(i int) string { return string(rune('a' + i)) })
	if len(mapped.Data) != 2 || mapped.Data[0] != "b" || mapped.TotalItems != 5 {
		t.Errorf("unexpected mapped page %+v", mapped)
	}
}

func TestPageRequestClampsSize(t *testing.T) {
	p := PageRequest{Page: 2, PageSize: 500}
	p.Defaults()
	if p.PageSize != MaxPageSize {
		t.Errorf("expected page size clamped to %d, got %d", MaxPageSize, p.PageSize)
	}
	if p.Offset() != MaxPageSize {
		t.Errorf("expected offset %d, got %d", MaxPageSize, p.Offset())
	}
}
