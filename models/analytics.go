package models

// AdminAnalytics is the summary returned by the admin dashboard endpoint.
// Percentages are of non-deleted users, rounded to one decimal.
type AdminAnalytics struct {
	TotalUsers          int64            `json:"totalUsers"`
	NewUsersLast30Days  int64            `json:"newUsersLast30Days"`
	UsersByRole         []RoleCount      `json:"usersByRole"`
	ApplicationsByState map[string]int64 `json:"applicationsByStatus"`
	ModulesByState      map[string]int64 `json:"modulesByStatus"`
	PublishedByCategory []CategoryCount  `json:"publishedModulesByCategory"`
}

type RoleCount struct {
	Role       string  `json:"role" db:"role"`
	Count      int64   `json:"count" db:"count"`
	Percentage float64 `json:"percentage"`
}

type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int64  `json:"count" db:"count"`
}

type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}
