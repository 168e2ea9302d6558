package transaction

const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 20
	FirstPage       = 1
	MaxPage         = 1<<31 - 1 // keeps Offset far from overflow
)

// Window is a sanitized pagination request.
type Window struct {
	Page     int
	PageSize int
}

// Sanitize clamps raw pagination input. It never fails: pageSize is forced
// into [MinPageSize, MaxPageSize] and page into [FirstPage, MaxPage].
func Sanitize(page, pageSize int) Window {
	return Window{
		Page:     min(max(page, FirstPage), MaxPage),
		PageSize: min(max(pageSize, MinPageSize), MaxPageSize),
	}
}

// Offset is the number of rows skipped before this window.
func (w Window) Offset() int {
	return (w.Page - 1) * w.PageSize
}

// HasMore reports whether rows exist past this window.
func (w Window) HasMore(total int64) bool {
	return int64(w.Offset()+w.PageSize) < total
}
