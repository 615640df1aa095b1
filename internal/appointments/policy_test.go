package appointments

import "testing"

func TestPolicyEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		dailyMax int
		count    int
		admit    bool
	}{
		{"empty day", 10, 0, true},
		{"one below ceiling", 10, 9, true},
		{"at ceiling", 10, 10, false},
		{"over ceiling", 10, 11, false},
		{"tight ceiling admits first", 2, 0, true},
		{"tight ceiling admits second", 2, 1, true},
		{"tight ceiling rejects third", 2, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolicy(tt.dailyMax)
			got := p.Evaluate(tt.count)
			if got.Admit != tt.admit {
				t.Fatalf("Evaluate(%d) admit = %v, want %v", tt.count, got.Admit, tt.admit)
			}
			if !got.Admit && got.Reason != CodeCapacityExceeded {
				t.Fatalf("rejection reason = %q, want %q", got.Reason, CodeCapacityExceeded)
			}
		})
	}
}

func TestNewPolicyDefaultsCeiling(t *testing.T) {
	for _, bad := range []int{0, -3} {
		p := NewPolicy(bad)
		if p.DailyMax() != 10 {
			t.Fatalf("NewPolicy(%d).DailyMax() = %d, want 10", bad, p.DailyMax())
		}
	}
}
