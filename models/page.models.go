package models

// PageLink identifies an adjacent page of a product listing.
type PageLink struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort,omitempty"`
	Query string `json:"query,omitempty"`
}

// ProductPage is one page of a filtered, sorted product listing.
type ProductPage struct {
	Docs        []Product `json:"docs"`
	TotalDocs   int64     `json:"totalDocs"`
	Limit       int       `json:"limit"`
	Page        int       `json:"page"`
	TotalPages  int       `json:"totalPages"`
	PrevPage    *int      `json:"prevPage"`
	NextPage    *int      `json:"nextPage"`
	HasPrevPage bool      `json:"hasPrevPage"`
	HasNextPage bool      `json:"hasNextPage"`
	PrevLink    *PageLink `json:"prevLink"`
	NextLink    *PageLink `json:"nextLink"`
}
