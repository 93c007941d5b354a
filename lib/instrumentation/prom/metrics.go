package prom

import (
	"gfx.cafe/open/gotoprom"
	"github.com/prometheus/client_golang/prometheus"
)

type DispatcherLabels struct {
	Dispatcher string `label:"dispatcher"`
}

var Dispatcher struct {
	Acquire    func(DispatcherLabels) prometheus.Histogram `name:"acquire_ms" buckets:"0.005,0.01,0.1,0.25,0.5,0.75,1,5,10,100,500,1000,5000,30000" help:"ms to acquire a worker"`
	Timeouts   func(DispatcherLabels) prometheus.Counter   `name:"acquire_timeouts" help:"acquires that hit the acquire timeout"`
	Thresholds func(DispatcherLabels) prometheus.Counter   `name:"acquire_threshold_exceeded" help:"acquires slower than the configured threshold"`
	Held       func(DispatcherLabels) prometheus.Gauge     `name:"workers_held" help:"workers currently held by tasks"`
}

type TransactionLabels struct {
	Mode string `label:"mode"`
}

var Transaction struct {
	Begun    func(TransactionLabels) prometheus.Counter   `name:"begun" help:"transactions begun"`
	Duration func(TransactionLabels) prometheus.Histogram `name:"duration_ms" buckets:"1,5,10,30,75,150,300,500,1000,2000,5000,7500,10000,15000,30000" help:"ms a transaction stayed open"`
}

func init() {
	gotoprom.MustInit(&Dispatcher, "taffy_dispatcher", prometheus.Labels{})
	gotoprom.MustInit(&Transaction, "taffy_transaction", prometheus.Labels{})
}
