package parser

import (
	"github.com/FACorreiaa/invoice-converter/internal/domain/invoice/normalizer"
)

// Mode is the classifier's section state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInDelayedSection
)

func (m Mode) String() string {
	if m == ModeInDelayedSection {
		return "in_delayed_section"
	}
	return "normal"
}

// lineKind names the rule that fired for a line. Rules are tried in the order
// of the constants and the first match consumes the line.
type lineKind int

const (
	kindUnrecognized lineKind = iota
	kindDelayedHeader
	kindDelayedTerminator
	kindDelayedItem
	kindDelayedNoise
	kindItem
	kindOrderForward
	kindOrderBackward
)

// Option configures a Classifier.
type Option func(*Classifier)

// WithPendingOrderExpiry discards a pending order number when more than
// maxLines Normal-mode lines separate it from the next item line. Zero keeps it
// until the next item, however far away.
func WithPendingOrderExpiry(maxLines int) Option {
	return func(c *Classifier) {
		if maxLines > 0 {
			c.pendingMaxLines = maxLines
		}
	}
}

// Classifier is the per-document line state machine. It is not safe for
// concurrent use; create one per document.
type Classifier struct {
	mode       Mode
	lastItem   int
	pending    *string
	pendingAge int

	pendingMaxLines int

	items   []InvoiceItem
	delayed []DelayedOrderRecord
	stats   Stats
}

// NewClassifier returns a classifier in Normal mode with no pending order number.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		mode:     ModeNormal,
		lastItem: -1,
		items:    make([]InvoiceItem, 0),
		delayed:  make([]DelayedOrderRecord, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs a fresh classifier over a normalized line sequence.
func Classify(lines []string, opts ...Option) *Result {
	c := NewClassifier(opts...)
	for _, line := range lines {
		c.Feed(line)
	}
	return c.Result()
}

// Mode returns the current section state.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Feed classifies one line and applies its transition. Empty lines are ignored.
func (c *Classifier) Feed(line string) {
	if line == "" {
		return
	}
	c.stats.Lines++

	kind, m := c.match(line)
	if c.mode == ModeNormal && kind != kindItem {
		c.agePending()
	}

	switch kind {
	case kindDelayedHeader:
		c.mode = ModeInDelayedSection
		c.stats.DelayedSections++

	case kindDelayedTerminator:
		c.mode = ModeNormal

	case kindDelayedItem:
		c.delayed = append(c.delayed, DelayedOrderRecord{
			Position:      m[delayedPos],
			ArticleNumber: m[delayedArt],
			OpenQuantity:  parseQuantity(m[delayedQty]),
			Description:   normalizer.CleanLine(m[delayedDesc]),
		})
		c.stats.DelayedRecords++

	case kindDelayedNoise:
		c.stats.DroppedInSection++

	case kindItem:
		c.items = append(c.items, InvoiceItem{
			Position:      m[itemPos],
			ArticleNumber: m[itemArt],
			Description:   normalizer.CleanLine(m[itemDesc]),
			Quantity:      parseQuantity(m[itemQty]),
			Unit:          m[itemUnit],
			NetPrice:      ParsePrice(m[itemPrice]),
			OrderNumber:   c.pending,
		})
		if c.pending != nil {
			c.stats.OrderNumbersAssigned++
		}
		c.lastItem = len(c.items) - 1
		c.clearPending()
		c.stats.Items++

	case kindOrderForward:
		num := m[orderForwardNum]
		if !c.backfill(num) {
			c.setPending(num)
		}

	case kindOrderBackward:
		num := m[orderBackwardNum]
		c.setPending(num)
		c.backfill(num)

	default:
		c.stats.Unrecognized++
	}
}

// Result returns the records collected so far. The slices are shared with the
// classifier; do not keep feeding after handing the result out.
func (c *Classifier) Result() *Result {
	return &Result{
		Items:   c.items,
		Delayed: c.delayed,
		Stats:   c.stats,
	}
}

// match picks the first rule that applies to line in the current mode.
func (c *Classifier) match(line string) (lineKind, []string) {
	if c.mode == ModeInDelayedSection {
		if delayedTerminatorPattern.MatchString(line) {
			return kindDelayedTerminator, nil
		}
		if m := delayedItemPattern.FindStringSubmatch(line); m != nil {
			return kindDelayedItem, m
		}
		return kindDelayedNoise, nil
	}

	if delayedHeaderPattern.MatchString(line) {
		return kindDelayedHeader, nil
	}
	if m := itemPattern.FindStringSubmatch(line); m != nil {
		return kindItem, m
	}
	if m := orderForwardPattern.FindStringSubmatch(line); m != nil {
		return kindOrderForward, m
	}
	if m := orderBackwardPattern.FindStringSubmatch(line); m != nil {
		return kindOrderBackward, m
	}
	return kindUnrecognized, nil
}

// backfill gives num to the last item if it has no order number yet.
func (c *Classifier) backfill(num string) bool {
	if c.lastItem < 0 || c.items[c.lastItem].OrderNumber != nil {
		return false
	}
	c.items[c.lastItem].OrderNumber = &num
	c.stats.OrderNumbersAssigned++
	return true
}

func (c *Classifier) setPending(num string) {
	c.pending = &num
	c.pendingAge = 0
}

func (c *Classifier) clearPending() {
	c.pending = nil
	c.pendingAge = 0
}

// agePending counts Normal-mode lines since the pending order number was set.
// The line that sets it resets the age afterwards.
func (c *Classifier) agePending() {
	if c.pending == nil || c.pendingMaxLines == 0 {
		return
	}
	c.pendingAge++
	if c.pendingAge > c.pendingMaxLines {
		c.clearPending()
		c.stats.PendingExpired++
	}
}
