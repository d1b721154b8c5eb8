package tournament

// Stats summarizes a player's tournaments.
type Stats struct {
	Tournaments  int
	WithResult   int
	TotalBuyIns  float64
	TotalPayouts float64
	Profit       float64
	ROI          float64
	ITM          float64 // share of finished tournaments with a payout, in percent
	Wins         int
	BestFinish   int // 0 when no results
}

// ComputeStats aggregates tournaments. Only tournaments with a result count
// toward money totals, so pending entries do not drag ROI down.
func ComputeStats(ts []Tournament) Stats {
	s := Stats{Tournaments: len(ts)}
	cashes := 0
	for _, t := range ts {
		if t.Result == nil {
			continue
		}
		s.WithResult++
		s.TotalBuyIns += t.BuyIn
		s.TotalPayouts += t.Result.Payout
		if t.Result.Payout > 0 {
			cashes++
		}
		if t.Result.Position == 1 {
			s.Wins++
		}
		if s.BestFinish == 0 || t.Result.Position < s.BestFinish {
			s.BestFinish = t.Result.Position
		}
	}

	s.Profit = s.TotalPayouts - s.TotalBuyIns
	if s.TotalBuyIns > 0 {
		s.ROI = s.Profit / s.TotalBuyIns * 100
	}
	if s.WithResult > 0 {
		s.ITM = float64(cashes) / float64(s.WithResult) * 100
	}
	return s
}
