package metrics

import (
	"fmt"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/mochi-xyz/market/base/log"
)

const (
	ddPort = 8125
	// buffer 10 metrics before sending to statsd
	bufferMetrics = 10
)

func newStatsCli(host string) statsCli {
	if host == "" {
		log.Log().Info("datadog_host not set, metrics go to debug log")
		return &logClient{}
	}
	addr := fmt.Sprintf("%s:%d", host, ddPort)
	c, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Error("can't talk to datadog agent, metrics go to debug log")
		return &logClient{}
	}
	log.Log().WithField("addr", addr).Info("connected to datadog agent")
	return c
}

// logClient writes metrics to the debug log.
type logClient struct{}

func (lc *logClient) Gauge(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric gauge")
	return nil
}

func (lc *logClient) Count(name string, value int64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric count")
	return nil
}

func (lc *logClient) Histogram(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric histogram")
	return nil
}

func (lc *logClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "time_ms": value, "tags": tags}).Debug("metric time")
	return nil
}
