package correlation

import (
	"testing"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

func TestFuseRuleSelection(t *testing.T) {
	w := models.DefaultFusionWeights()

	tests := []struct {
		name                string
		text, geo, temporal int
		wantRule            string
		wantOverall         int
	}{
		{"both strong", 90, 90, 80, "both_strong", 99},
		{"both strong perfect", 100, 100, 100, "both_strong", 100},
		{"text strong alone", 95, 30, 50, "text_strong", 88},
		{"geo strong alone", 30, 95, 40, "geo_strong", 84},
		{"both moderate", 70, 65, 60, "both_moderate", 74},
		{"text moderate alone", 65, 20, 80, "text_moderate", 83},
		{"geo moderate alone", 20, 70, 40, "geo_moderate", 69},
		{"all weak", 40, 30, 100, "all_weak", 55},
		{"all zero", 0, 0, 0, "all_weak", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overall, rule := Fuse(tt.text, tt.geo, tt.temporal, w)
			if rule != tt.wantRule {
				t.Fatalf("rule = %q, want %q", rule, tt.wantRule)
			}
			if overall != tt.wantOverall {
				t.Errorf("overall = %d, want %d", overall, tt.wantOverall)
			}
		})
	}
}

func TestFuseReproducible(t *testing.T) {
	w := models.DefaultFusionWeights()

	// The overall score is a pure function of the three signals
	first, firstRule := Fuse(72, 64, 80, w)
	for i := 0; i < 10; i++ {
		overall, rule := Fuse(72, 64, 80, w)
		if overall != first || rule != firstRule {
			t.Fatalf("Fuse not reproducible: (%d,%s) then (%d,%s)", first, firstRule, overall, rule)
		}
	}
}

func TestFuseBounded(t *testing.T) {
	w := models.DefaultFusionWeights()

	for _, text := range []int{0, 50, 85, 100} {
		for _, geo := range []int{0, 50, 85, 100} {
			for _, temporal := range []int{0, 50, 100} {
				overall, _ := Fuse(text, geo, temporal, w)
				if overall < 0 || overall > 100 {
					t.Fatalf("Fuse(%d,%d,%d) = %d, out of [0,100]", text, geo, temporal, overall)
				}
			}
		}
	}
}

func TestFuseStrongSignalDominates(t *testing.T) {
	w := models.DefaultFusionWeights()

	// One very strong signal must not be averaged away by weak others
	overall, _ := Fuse(95, 0, 0, w)
	if overall < 80 {
		t.Errorf("strong text fused to %d, want >= 80", overall)
	}

	overall, _ = Fuse(0, 95, 0, w)
	if overall < 75 {
		t.Errorf("strong geo fused to %d, want >= 75", overall)
	}
}

func TestFuseTemporalMonotonic(t *testing.T) {
	w := models.DefaultFusionWeights()

	// Holding text and geo fixed, a better temporal signal never lowers the score
	for _, pair := range [][2]int{{90, 90}, {95, 30}, {70, 65}, {40, 30}} {
		prev := -1
		for _, temporal := range []int{0, 20, 40, 60, 80, 100} {
			overall, _ := Fuse(pair[0], pair[1], temporal, w)
			if overall < prev {
				t.Fatalf("Fuse(%d,%d,%d) = %d dropped below %d", pair[0], pair[1], temporal, overall, prev)
			}
			prev = overall
		}
	}
}

func TestTemporalConfidence(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{0, 100},
		{1, 80},
		{-1, 80},
		{2, 60},
		{3, 40},
		{4, 20},
		{5, 20},
		{6, 0},
		{30, 0},
	}

	for _, tt := range tests {
		if got := TemporalConfidence(tt.days); got != tt.want {
			t.Errorf("TemporalConfidence(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestQualityLabel(t *testing.T) {
	tests := []struct {
		name                string
		text, geo, temporal int
		want                string
	}{
		{"excellent needs all three", 90, 90, 80, models.QualityExcellent},
		{"good tier", 80, 75, 60, models.QualityGood},
		{"fair on text alone", 65, 10, 0, models.QualityFair},
		{"fair on geo alone", 10, 70, 0, models.QualityFair},
		{"poor", 40, 40, 100, models.QualityPoor},
		{"strong signals weak temporal is good not excellent", 90, 90, 60, models.QualityGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityLabel(tt.text, tt.geo, tt.temporal); got != tt.want {
				t.Errorf("QualityLabel(%d,%d,%d) = %q, want %q", tt.text, tt.geo, tt.temporal, got, tt.want)
			}
		})
	}
}
