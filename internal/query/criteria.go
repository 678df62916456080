package query

import "time"

// UserCriteria filters user listings. Zero values mean "no filter".
type UserCriteria struct {
	Roles          []string
	Genders        []string
	CreatedUserIDs []string
	UpdatedUserIDs []string
	CreatedAtStart *time.Time
	CreatedAtEnd   *time.Time
	UpdatedAtStart *time.Time
	UpdatedAtEnd   *time.Time
	IsBlocked      *bool
	Q              string
}

// CategoryCriteria filters category listings
type CategoryCriteria struct {
	CreatedUserIDs []string
	UpdatedUserIDs []string
	CreatedAtStart *time.Time
	CreatedAtEnd   *time.Time
	UpdatedAtStart *time.Time
	UpdatedAtEnd   *time.Time
	Q              string
}

// TagCriteria filters tag listings
type TagCriteria struct {
	CreatedUserIDs []string
	UpdatedUserIDs []string
	CreatedAtStart *time.Time
	CreatedAtEnd   *time.Time
	UpdatedAtStart *time.Time
	UpdatedAtEnd   *time.Time
	Q              string
}

// PostCriteria filters post listings
type PostCriteria struct {
	UserIDs        []string
	CategoryIDs    []string
	TagIDs         []string
	IsPublished    *bool
	CreatedAtStart *time.Time
	CreatedAtEnd   *time.Time
	Q              string
}
