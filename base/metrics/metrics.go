/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- Error: *.err
- Settlement volume: *.volume
*/
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/mochi-xyz/market/base/env"
	"github.com/mochi-xyz/market/base/log"
)

const (
	// TagValueNA is used for tags whose values are not available.
	TagValueNA = "n/a"

	defaultSampleRate = 1.0
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// statsCli is the subset of statsd.ClientInterface used here.
type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

var (
	cliOnce sync.Once
	cli     statsCli
)

func client() statsCli {
	cliOnce.Do(func() {
		cli = newStatsCli(viper.GetString("datadog_host"))
	})
	return cli
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	return &impl{
		pkgName: pkgName,
		tags: []string{
			"host:", // drop the host tag
			"pod:" + env.PodName(),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
		cli: client,
	}
}

type impl struct {
	pkgName string
	tags    []string
	cli     func() statsCli
}

func (m *impl) key(k string) string {
	return m.pkgName + "." + k
}

func (m *impl) allTags(tags []string) []string {
	res := make([]string, 0, len(m.tags)+len(tags)/2)
	res = append(res, m.tags...)
	return append(res, parseTag(tags)...)
}

func (m *impl) report(fn string, key string, val interface{}, err error) {
	if err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "val": val, "func": fn}).Error("Bump fail")
	}
}

// BumpAvg bumps the average for the given key.
func (m *impl) BumpAvg(key string, val float64, tags ...string) {
	m.report("BumpAvg", key, val, m.cli().Gauge(m.key(key), val, m.allTags(tags), defaultSampleRate))
}

// BumpSum bumps the sum for the given key.
func (m *impl) BumpSum(key string, val float64, tags ...string) {
	m.report("BumpSum", key, val, m.cli().Count(m.key(key), int64(val), m.allTags(tags), defaultSampleRate))
}

// BumpHistogram bumps the histogram for the given key.
func (m *impl) BumpHistogram(key string, val float64, tags ...string) {
	m.report("BumpHistogram", key, val, m.cli().Histogram(m.key(key), val, m.allTags(tags), defaultSampleRate))
}

// BumpTime starts a timer, End() reports the elapsed milliseconds:
//
//     defer s.BumpTime("my.function").End()
func (m *impl) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		start: time.Now(),
		end: func(ms float64) {
			m.report("BumpTime", key, ms, m.cli().TimeInMilliseconds(m.key(key), ms, m.allTags(tags), defaultSampleRate))
		},
	}
}

type timeTracker struct {
	start time.Time
	end   func(ms float64)
}

func (t *timeTracker) End() {
	d := time.Since(t.start)
	t.end(float64(d) / float64(time.Millisecond))
}

// parseTag turns k1, v1, k2, v2 into k1:v1, k2:v2. Odd trailing keys get TagValueNA.
func parseTag(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	arr := make([]string, 0, (len(tags)+1)/2)
	for i := 0; i < len(tags); i += 2 {
		v := TagValueNA
		if i+1 < len(tags) && tags[i+1] != "" {
			v = strings.ReplaceAll(tags[i+1], ",", "_")
		}
		arr = append(arr, tags[i]+":"+v)
	}
	return arr
}

// NewNoop returns a Service dropping every metric, for tests.
func NewNoop() Service {
	return noop{}
}

type noop struct{}

func (noop) BumpAvg(string, float64, ...string)       {}
func (noop) BumpSum(string, float64, ...string)       {}
func (noop) BumpHistogram(string, float64, ...string) {}
func (noop) BumpTime(string, ...string) Ender         { return noopEnder{} }

type noopEnder struct{}

func (noopEnder) End() {}
