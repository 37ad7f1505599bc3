package models

import "testing"

func TestDefaultParamsValidate(t *testing.T) {
	if err := DefaultClusterParams().Validate(); err != nil {
		t.Errorf("default cluster params rejected: %v", err)
	}
	if err := DefaultCorrelationParams().Validate(); err != nil {
		t.Errorf("default correlation params rejected: %v", err)
	}
	if err := DefaultRouteParams().Validate(); err != nil {
		t.Errorf("default route params rejected: %v", err)
	}
}

func TestClusterParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*ClusterParams)
		wantErr bool
	}{
		{"zero radius", func(p *ClusterParams) { p.RadiusMeters = 0 }, true},
		{"negative radius", func(p *ClusterParams) { p.RadiusMeters = -10 }, true},
		{"zero min points", func(p *ClusterParams) { p.MinPoints = 0 }, true},
		{"negative idle", func(p *ClusterParams) { p.MinIdleMinutes = -1 }, true},
		{"zero idle ok", func(p *ClusterParams) { p.MinIdleMinutes = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultClusterParams()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestCorrelationParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*CorrelationParams)
		wantErr bool
	}{
		{"negative tolerance", func(p *CorrelationParams) { p.DateToleranceDays = -1 }, true},
		{"zero tolerance ok", func(p *CorrelationParams) { p.DateToleranceDays = 0 }, false},
		{"zero radius", func(p *CorrelationParams) { p.MaxSearchRadiusKm = 0 }, true},
		{"confidence over 100", func(p *CorrelationParams) { p.MinConfidence = 101 }, true},
		{"confidence negative", func(p *CorrelationParams) { p.MinConfidence = -1 }, true},
		{"valid date range", func(p *CorrelationParams) {
			p.StartDate, p.EndDate = "2025-03-01", "2025-03-31"
		}, false},
		{"malformed start date", func(p *CorrelationParams) {
			p.StartDate, p.EndDate = "10/03/2025", "2025-03-31"
		}, true},
		{"malformed end date", func(p *CorrelationParams) {
			p.StartDate, p.EndDate = "2025-03-01", "31-03-2025"
		}, true},
		{"start date without end", func(p *CorrelationParams) { p.StartDate = "2025-03-01" }, true},
		{"end date without start", func(p *CorrelationParams) { p.EndDate = "2025-03-31" }, true},
		{"inverted date range", func(p *CorrelationParams) {
			p.StartDate, p.EndDate = "2025-03-31", "2025-03-01"
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultCorrelationParams()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestRouteParamsValidate(t *testing.T) {
	p := DefaultRouteParams()
	p.MinTripCount = 0
	if p.Validate() == nil {
		t.Error("expected error for zero min trip count")
	}
	p = DefaultRouteParams()
	p.POIConfidenceFloor = 120
	if p.Validate() == nil {
		t.Error("expected error for confidence floor above 100")
	}
	p = DefaultRouteParams()
	p.AssignRadiusMeters = -5
	if p.Validate() == nil {
		t.Error("expected error for negative assign radius")
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 100},
		{-3, -1, 1, 100},
		{2, 50, 2, 50},
		{1, 1000, 1, 1000},
		{1, 5000, 1, 1000},
	}
	for _, tc := range cases {
		gotPage, gotSize := NormalizePage(tc.page, tc.size)
		if gotPage != tc.wantPage || gotSize != tc.wantSize {
			t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.size, gotPage, gotSize, tc.wantPage, tc.wantSize)
		}
	}
}
