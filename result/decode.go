package result

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// envelope stages each top-level section so a malformed section is skipped
// instead of failing the whole decode. encoding/json matches object keys
// case-insensitively, which covers the camelCase/PascalCase variants the
// engine emits.
type envelope struct {
	ProfitLoss                 json.RawMessage `json:"profitLoss"`
	Orders                     json.RawMessage `json:"orders"`
	Charts                     json.RawMessage `json:"charts"`
	Statistics                 json.RawMessage `json:"statistics"`
	TotalPerformanceStatistics json.RawMessage `json:"total_performance_statistics"`
	RuntimeStatistics          json.RawMessage `json:"runtimeStatistics"`
	TotalPerformance           json.RawMessage `json:"totalPerformance"`
}

// Decode parses a raw backtest result. Only top-level non-JSON input is an
// error; any section that fails to decode is dropped with a warning and the
// remaining sections are kept.
func Decode(data []byte) (*Raw, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	raw := &Raw{}

	decodeSection(env.ProfitLoss, "profitLoss", &raw.ProfitLoss)
	decodeSection(env.Orders, "orders", &raw.Orders)
	decodeSection(env.Charts, "charts", &raw.Charts)
	decodeSection(env.Statistics, "statistics", &raw.Statistics)
	decodeSection(env.TotalPerformanceStatistics, "total_performance_statistics", &raw.TotalPerformanceStats)
	decodeSection(env.RuntimeStatistics, "runtimeStatistics", &raw.RuntimeStatistics)

	if len(env.TotalPerformance) > 0 {
		var tp struct {
			PortfolioStatistics json.RawMessage `json:"portfolioStatistics"`
		}
		if err := json.Unmarshal(env.TotalPerformance, &tp); err != nil {
			log.WithError(err).Warn("skipping malformed totalPerformance section")
		} else {
			decodeSection(tp.PortfolioStatistics, "totalPerformance.portfolioStatistics", &raw.PortfolioStatistics)
		}
	}

	return raw, nil
}

func decodeSection[T any](data json.RawMessage, name string, dst *T) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.WithError(err).WithField("section", name).Warn("skipping malformed result section")
		var zero T
		*dst = zero
	}
}
