package shared

// DefaultPageLimit is used when a caller does not ask for a page size.
const DefaultPageLimit = 50

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Page is one slice of a listing plus its metadata.
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices data for the requested page. A limit below one is read as one. Pages past the end come back
// empty with the metadata still describing the full listing.
func Paginate[T any](data []T, page, limit int) Page[T] {
	limit = max(limit, 1)
	meta := NewPagination(page, limit, len(data))
	out := Page[T]{
		Data:       []T{},
		Page:       meta.Page,
		Limit:      meta.PerPage,
		Total:      meta.Total,
		TotalPages: meta.TotalPages,
	}
	// Compare page counts before multiplying; a huge page would overflow.
	if meta.Page > meta.TotalPages {
		return out
	}
	start := (meta.Page - 1) * meta.PerPage
	end := min(start+meta.PerPage, len(data))
	out.Data = append(out.Data, data[start:end]...)
	return out
}
