package models

import "testing"

func TestAllowsMarket(t *testing.T) {
	tests := []struct {
		name   string
		cfg    FollowConfig
		market string
		want   bool
	}{
		{"no filters allows all", FollowConfig{}, "m1", true},
		{"deny list blocks", FollowConfig{MarketDenyList: []string{"m1"}}, "m1", false},
		{"deny list passes others", FollowConfig{MarketDenyList: []string{"m1"}}, "m2", true},
		{"allow list passes member", FollowConfig{MarketAllowList: []string{"m1"}}, "m1", true},
		{"allow list blocks others", FollowConfig{MarketAllowList: []string{"m1"}}, "m2", false},
		{"deny wins over allow", FollowConfig{MarketAllowList: []string{"m1"}, MarketDenyList: []string{"m1"}}, "m1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AllowsMarket(tt.market); got != tt.want {
				t.Errorf("AllowsMarket(%s) = %v, want %v", tt.market, got, tt.want)
			}
		})
	}
}

func TestTradeNotionalFallback(t *testing.T) {
	explicit := Trade{Size: 100, Price: 0.5, NotionalValue: 42}
	if got := explicit.Notional(); got != 42 {
		t.Errorf("Notional = %v, want reported 42", got)
	}
	derived := Trade{Size: 100, Price: 0.5}
	if got := derived.Notional(); got != 50 {
		t.Errorf("Notional = %v, want derived 50", got)
	}
}

func TestTradeSideOpposite(t *testing.T) {
	if TradeSideBuy.Opposite() != TradeSideSell || TradeSideSell.Opposite() != TradeSideBuy {
		t.Error("Opposite should swap sides")
	}
}

func TestTierRankOrdering(t *testing.T) {
	ladder := []Tier{TierBeginner, TierIntermediate, TierAdvanced, TierExpert, TierWhale}
	for i := 1; i < len(ladder); i++ {
		if ladder[i].Rank() <= ladder[i-1].Rank() {
			t.Errorf("%s rank %d not above %s rank %d", ladder[i], ladder[i].Rank(), ladder[i-1], ladder[i-1].Rank())
		}
	}
}
