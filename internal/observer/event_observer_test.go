package observer

import (
	"context"
	"sync"
	"testing"
	"time"
)

// captureObserver records events for assertions
type captureObserver struct {
	mu     sync.Mutex
	events []GrowthEvent
	name   string
}

func (o *captureObserver) OnEvent(ctx context.Context, event GrowthEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *captureObserver) GetObserverName() string { return o.name }

func (o *captureObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestEventPublisher_NotifiesAllObservers(t *testing.T) {
	publisher := NewEventPublisher()
	first := &captureObserver{name: "first"}
	second := &captureObserver{name: "second"}
	publisher.Subscribe(first)
	publisher.Subscribe(second)

	publisher.NotifyObservers(context.Background(), GrowthEvent{
		EventType: AnalysisStarted,
		Timestamp: time.Now(),
	})

	waitFor(t, func() bool { return first.count() == 1 && second.count() == 1 })
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	kept := &captureObserver{name: "kept"}
	removed := &captureObserver{name: "removed"}
	publisher.Subscribe(kept)
	publisher.Subscribe(removed)
	publisher.Unsubscribe(removed)

	publisher.NotifyObservers(context.Background(), GrowthEvent{EventType: AnalysisCompleted})

	waitFor(t, func() bool { return kept.count() == 1 })
	time.Sleep(20 * time.Millisecond)
	if removed.count() != 0 {
		t.Errorf("Unsubscribed observer still received %d events", removed.count())
	}
}

// panicObserver always panics in its handler
type panicObserver struct{}

func (panicObserver) OnEvent(ctx context.Context, event GrowthEvent) { panic("observer bug") }
func (panicObserver) GetObserverName() string                        { return "panicking" }

func TestEventPublisher_SurvivesPanickingObserver(t *testing.T) {
	publisher := NewEventPublisher()
	healthy := &captureObserver{name: "healthy"}
	publisher.Subscribe(panicObserver{})
	publisher.Subscribe(healthy)

	publisher.NotifyObservers(context.Background(), GrowthEvent{EventType: AnalysisFailed})
	waitFor(t, func() bool { return healthy.count() == 1 })
}

func TestStatsObserver_Counters(t *testing.T) {
	stats := NewStatsObserver()
	ctx := context.Background()

	stats.OnEvent(ctx, GrowthEvent{EventType: AnalysisStarted})
	stats.OnEvent(ctx, GrowthEvent{EventType: AnalysisStarted})
	stats.OnEvent(ctx, GrowthEvent{EventType: AnalysisCompleted, ProcessingTime: 100 * time.Millisecond})
	stats.OnEvent(ctx, GrowthEvent{EventType: AnalysisFailed})

	got := stats.GetStats()
	if got["total_analyses"] != int64(2) {
		t.Errorf("total_analyses = %v, expected 2", got["total_analyses"])
	}
	if got["successful_analyses"] != int64(1) {
		t.Errorf("successful_analyses = %v, expected 1", got["successful_analyses"])
	}
	if got["failed_analyses"] != int64(1) {
		t.Errorf("failed_analyses = %v, expected 1", got["failed_analyses"])
	}
	if got["avg_processing_time"] != "100ms" {
		t.Errorf("avg_processing_time = %v, expected 100ms", got["avg_processing_time"])
	}
}

func TestStatsObserver_IgnoresResolutionEvents(t *testing.T) {
	stats := NewStatsObserver()
	stats.OnEvent(context.Background(), GrowthEvent{EventType: ImageResolved})
	stats.OnEvent(context.Background(), GrowthEvent{EventType: ImageResolveFailed})

	got := stats.GetStats()
	if got["total_analyses"] != int64(0) {
		t.Errorf("Resolution events should not count as analyses, got %v", got["total_analyses"])
	}
}
