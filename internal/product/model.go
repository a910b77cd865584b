package product

import "github.com/shopspring/decimal"

// Product is a snapshot of one catalog row as read at a single instant.
type Product struct {
	ID      int64
	Name    string
	Price   decimal.Decimal
	Stock   int
	Active  bool
	Version int
}

type Summary struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Stock  int
	Active bool
}

type Page struct {
	Content       []Summary
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

func newPage(content []Summary, page, size int, total int64) Page {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	if content == nil {
		content = []Summary{}
	}
	return Page{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
