package entitlements

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "standard", want: PlanStandard},
		{in: "premium", want: PlanPremium},
		{in: " Premium ", want: PlanPremium},
		{in: "STANDARD", want: PlanStandard},
		{in: "invalid", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRank(t *testing.T) {
	if PlanRank(PlanFree) >= PlanRank(PlanStandard) {
		t.Fatalf("expected standard to outrank free")
	}
	if PlanRank(PlanStandard) >= PlanRank(PlanPremium) {
		t.Fatalf("expected premium to outrank standard")
	}
}

func TestDailyTokenLimit(t *testing.T) {
	if got := DailyTokenLimit(PlanFree); got != 20 {
		t.Fatalf("free limit = %d, want 20", got)
	}
	if got := DailyTokenLimit(PlanStandard); got != 100 {
		t.Fatalf("standard limit = %d, want 100", got)
	}
	if got := DailyTokenLimit(PlanPremium); got != PremiumDailyTokens {
		t.Fatalf("premium limit = %d, want sentinel", got)
	}
}

func TestIsUnlimited(t *testing.T) {
	if IsUnlimited(PlanFree) || IsUnlimited(PlanStandard) {
		t.Fatalf("free/standard must not be unlimited")
	}
	if !IsUnlimited(PlanPremium) {
		t.Fatalf("premium must be unlimited")
	}
}
