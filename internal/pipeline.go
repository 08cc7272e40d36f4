package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
)

// Item is one unit of work handed from a producer to a consumer. Seq is
// 1-based and strictly increasing per producer.
type Item struct {
	Producer string `json:"producer"`
	Seq      int    `json:"seq"`
}

// Pipeline runs a scenario: every producer feeds one shared HandoffQueue,
// every consumer drains it until the queue is closed and empty. The queue
// is closed only after all producers have returned, so consumers always see
// a complete drain.
type Pipeline struct {
	Scenario     ScenarioFile
	ShowProgress bool
}

// Run executes the pipeline and returns a report of what was delivered.
// Producer failures do not abort the run; they are aggregated into the
// returned error alongside ctx cancellation observed by consumers.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if err := p.Scenario.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid scenario: %w", err)
	}

	queue := NewHandoffQueue[Item]()
	started := time.Now()
	log.Info().Msgf("Running scenario %s: %d producers, %d consumers, %d items",
		p.Scenario.Name, len(p.Scenario.Producers), p.Scenario.Consumers, p.Scenario.TotalItems())

	var pbar *progressbar.ProgressBar
	if p.ShowProgress {
		pbar = progressbar.Default(int64(p.Scenario.TotalItems()))
	}

	var (
		mu       sync.Mutex
		runErr   error
		consumed []Item
	)

	producers := conc.NewWaitGroup()
	for _, spec := range p.Scenario.Producers {
		spec := spec
		producers.Go(func() {
			if err := runProducer(ctx, queue, spec); err != nil {
				log.Warn().Msgf("Producer %s failed: %v", spec.ID, err)
				mu.Lock()
				runErr = multierr.Append(runErr, err)
				mu.Unlock()
			}
		})
	}

	consumers := conc.NewWaitGroup()
	consumerDelay := time.Duration(p.Scenario.ConsumerDelayMS) * time.Millisecond
	for i := 0; i < p.Scenario.Consumers; i++ {
		consumers.Go(func() {
			for {
				item, ok := queue.Pop()
				if !ok {
					return
				}
				// Processing happens after Pop returns, outside the queue
				// lock, so a slow consumer never stalls producers.
				if consumerDelay > 0 {
					time.Sleep(consumerDelay)
				}
				mu.Lock()
				consumed = append(consumed, item)
				mu.Unlock()
				if pbar != nil {
					pbar.Add(1)
				}
				log.Debug().Msgf("Consumed item %d from producer %s", item.Seq, item.Producer)
			}
		})
	}

	producers.Wait()
	// All pushes happen-before this close; consumers drain and exit.
	queue.Close()
	consumers.Wait()

	report := buildReport(p.Scenario, consumed, time.Since(started))
	log.Info().Msgf("Scenario %s finished: %d/%d items delivered in %s",
		p.Scenario.Name, report.Delivered, report.Expected, report.Duration)
	return report, runErr
}

func runProducer(ctx context.Context, queue *HandoffQueue[Item], spec ProducerSpec) error {
	delay := time.Duration(spec.DelayMS) * time.Millisecond
	for seq := 1; seq <= spec.Items; seq++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("producer %s cancelled: %w", spec.ID, err)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := queue.Push(Item{Producer: spec.ID, Seq: seq}); err != nil {
			return fmt.Errorf("producer %s: %w", spec.ID, err)
		}
		log.Debug().Msgf("Producer %s pushed item %d", spec.ID, seq)
		if spec.FailAfter > 0 && seq == spec.FailAfter {
			return fmt.Errorf("producer %s: injected failure after %d items", spec.ID, seq)
		}
	}
	return nil
}

func buildReport(scenario ScenarioFile, consumed []Item, duration time.Duration) Report {
	perProducer := make(map[string]int)
	for _, item := range consumed {
		perProducer[item.Producer]++
	}
	report := Report{
		Scenario:    scenario.Name,
		Expected:    expectedItems(scenario),
		Delivered:   len(consumed),
		PerProducer: perProducer,
		Duration:    duration,
		FinishedAt:  time.Now().UTC(),
	}
	// Delivery order is only observable end-to-end with a single consumer;
	// with several, interleaving between them is unspecified.
	if scenario.Consumers == 1 {
		ordered := true
		lastSeq := make(map[string]int)
		for _, item := range consumed {
			if item.Seq <= lastSeq[item.Producer] {
				ordered = false
				break
			}
			lastSeq[item.Producer] = item.Seq
		}
		report.Ordered = &ordered
	}
	return report
}

func expectedItems(scenario ScenarioFile) int {
	total := 0
	for _, p := range scenario.Producers {
		if p.FailAfter > 0 && p.FailAfter < p.Items {
			total += p.FailAfter
		} else {
			total += p.Items
		}
	}
	return total
}
