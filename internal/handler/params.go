package handler

// listParams binds the common listing query parameters
type listParams struct {
	Page   int    `form:"page,default=1"`
	Size   int    `form:"size,default=20"`
	SortBy string `form:"sortBy"`
	Sort   string `form:"sort"`
	Q      string `form:"q"`
}
