package sink

import (
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/model"
	"github.com/thedogwiththedataonit/opensea-demo-sub000/internal/trace/service"
)

// FanOutSink delivers each completed trace to every configured sink.
type FanOutSink struct {
	sinks []service.TraceSink
}

func NewFanOutSink(sinks ...service.TraceSink) *FanOutSink {
	return &FanOutSink{sinks: sinks}
}

func (f *FanOutSink) ConsumeTrace(trace *model.Trace) {
	for _, s := range f.sinks {
		s.ConsumeTrace(trace)
	}
}
