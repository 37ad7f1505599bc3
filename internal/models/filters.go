package models

// TripFilter represents filter parameters for querying trips
type TripFilter struct {
	StartTime int64  `form:"startTime"`
	EndTime   int64  `form:"endTime"`
	Vehicle   string `form:"vehicle"`
	Driver    string `form:"driver"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// POIFilter represents filter parameters for querying discovered POIs
type POIFilter struct {
	Status        string `form:"status"`
	POIType       string `form:"poiType"`
	MinConfidence int    `form:"minConfidence"`
	MinTripCount  int    `form:"minTripCount"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

// DeliveryFilter represents filter parameters for querying delivery records
type DeliveryFilter struct {
	StartDate string `form:"startDate"` // YYYY-MM-DD
	EndDate   string `form:"endDate"`   // YYYY-MM-DD
	Carrier   string `form:"carrier"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// CorrelationFilter represents filter parameters for querying correlations
type CorrelationFilter struct {
	TripID        int64  `form:"tripId"`
	MinConfidence int    `form:"minConfidence"`
	Quality       string `form:"quality"`
	NeedsReview   *bool  `form:"needsReview"`
	RunID         int64  `form:"runId"`
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
}

// RouteFilter represents filter parameters for querying route patterns
type RouteFilter struct {
	RouteType    string `form:"routeType"`
	QualityTier  string `form:"qualityTier"`
	MinTripCount int    `form:"minTripCount"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}

// NormalizePage clamps page/pageSize to sane bounds shared by all list queries
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
