package notify

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reviewquest/progression/pkg/metrics"
	"github.com/reviewquest/progression/pkg/progression"
)

// DefaultWindow is the debounce window for coalescing reward bursts.
const DefaultWindow = 250 * time.Millisecond

// Coalescer buffers award results and emits aggregated payloads. All state
// lives on one goroutine driven by channels and a debounce timer, so no two
// flushes can overlap and a flush always drains the full buffer before the
// state resets.
type Coalescer struct {
	sink   Sink
	window time.Duration

	submitCh chan *progression.AwardResult
	flushCh  chan chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
}

// buffer is the coalescing state owned by the run goroutine.
type buffer struct {
	contributions []Contribution
	total         int
	lastScore     int
	tierChange    *Payload
	achievements  []progression.Achievement
}

func (b *buffer) empty() bool {
	return len(b.contributions) == 0 && b.tierChange == nil && len(b.achievements) == 0
}

// NewCoalescer creates and starts a coalescer delivering to sink.
// A window of zero or less uses DefaultWindow.
func NewCoalescer(sink Sink, window time.Duration) *Coalescer {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Coalescer{
		sink:     sink,
		window:   window,
		submitCh: make(chan *progression.AwardResult, 64),
		flushCh:  make(chan chan struct{}),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit hands an award result to the coalescer. Submitting while buffering
// extends the window (debounce). Safe to call from any goroutine; results
// submitted after Close are dropped with a warning.
func (c *Coalescer) Submit(res *progression.AwardResult) {
	if res == nil {
		return
	}
	select {
	case c.submitCh <- res:
	case <-c.stopCh:
		logrus.Warnf("notification coalescer stopped, dropping result for user %s", res.UserID)
	}
}

// Flush forces an immediate emit of the current buffer and blocks until it
// has been presented. Used on navigation away: buffered contributions are
// presented rather than discarded.
func (c *Coalescer) Flush() {
	ack := make(chan struct{})
	select {
	case c.flushCh <- ack:
		<-ack
	case <-c.stopCh:
	}
}

// Close flushes any buffered state and stops the run goroutine.
func (c *Coalescer) Close() {
	select {
	case <-c.stopCh:
		return
	default:
	}
	close(c.stopCh)
	<-c.done
}

func (c *Coalescer) run() {
	defer close(c.done)

	timer := time.NewTimer(c.window)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false
	disarm := func() {
		if armed && !timer.Stop() {
			<-timer.C
		}
		armed = false
	}

	var buf buffer

	for {
		select {
		case res := <-c.submitCh:
			c.accumulate(&buf, res)
			disarm()
			timer.Reset(c.window)
			armed = true

		case <-timer.C:
			armed = false
			c.emit(&buf)

		case ack := <-c.flushCh:
			disarm()
			// Pull in any submits already queued so a flush right after a
			// submit never emits an empty buffer.
			for {
				select {
				case res := <-c.submitCh:
					c.accumulate(&buf, res)
					continue
				default:
				}
				break
			}
			c.emit(&buf)
			close(ack)

		case <-c.stopCh:
			disarm()
			// Drain anything racing with Close before the final emit.
			for {
				select {
				case res := <-c.submitCh:
					c.accumulate(&buf, res)
					continue
				default:
				}
				break
			}
			c.emit(&buf)
			return
		}
	}
}

func (c *Coalescer) accumulate(buf *buffer, res *progression.AwardResult) {
	if res.AmountAwarded > 0 {
		buf.contributions = append(buf.contributions, Contribution{
			ActionKind: res.ActionKind,
			Amount:     res.AmountAwarded,
		})
		buf.total += res.AmountAwarded
	}
	buf.lastScore = res.NewScore

	if res.TierChanged {
		// Only the latest tier change matters inside one window.
		buf.tierChange = &Payload{
			Kind:     KindTierChange,
			NewTier:  res.NewTier,
			NewScore: res.NewScore,
		}
	}
	buf.achievements = append(buf.achievements, res.AchievementsEarned...)
}

// emit presents the buffered state as payloads and resets the buffer.
// Tier changes and achievements go first; the reward aggregate degrades to
// a single-item payload when only one contribution was buffered.
func (c *Coalescer) emit(buf *buffer) {
	if buf.empty() {
		return
	}

	if buf.tierChange != nil {
		c.present(*buf.tierChange)
	}
	for i := range buf.achievements {
		a := buf.achievements[i]
		c.present(Payload{Kind: KindAchievementEarned, Achievement: &a})
	}

	switch len(buf.contributions) {
	case 0:
		// Tier change or achievement only; nothing to aggregate.
	case 1:
		c.present(Payload{
			Kind:          KindSingleReward,
			TotalAmount:   buf.total,
			Contributions: buf.contributions,
			NewScore:      buf.lastScore,
		})
	default:
		c.present(Payload{
			Kind:          KindBatchedReward,
			TotalAmount:   buf.total,
			Contributions: buf.contributions,
			NewScore:      buf.lastScore,
		})
	}

	*buf = buffer{}
}

func (c *Coalescer) present(p Payload) {
	metrics.CoalescerFlushesTotal.WithLabelValues(string(p.Kind)).Inc()
	c.sink.Present(p)
}
