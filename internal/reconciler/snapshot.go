package reconciler

import (
	"strings"
	"time"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the controller's cached state.
type Snapshot struct {
	UserID        string
	BillID        string
	Balance       decimal.Decimal
	Orders        []*orders.Order
	State         State
	ActiveOrderID string
	Warning       string
	Errors        map[ErrorSource]string
	UpdatedAt     time.Time
}

// LastError joins the outstanding errors of all concerns.
func (s Snapshot) LastError() string {
	msgs := make([]string, 0, len(s.Errors))

	for _, source := range errorSources {
		if msg, ok := s.Errors[source]; ok {
			msgs = append(msgs, string(source)+": "+msg)
		}
	}

	return strings.Join(msgs, "; ")
}

// OrderingEnabled reports whether a new order may be placed.
func (s Snapshot) OrderingEnabled() bool {
	return s.State == StateIdle
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ords := make([]*orders.Order, len(c.orderList))
	copy(ords, c.orderList)

	errs := make(map[ErrorSource]string, len(c.errs))
	for source, msg := range c.errs {
		errs[source] = msg
	}

	return Snapshot{
		UserID:        c.userID,
		BillID:        c.billID,
		Balance:       c.balance,
		Orders:        ords,
		State:         c.state,
		ActiveOrderID: c.activeOrderID,
		Warning:       c.warning,
		Errors:        errs,
		UpdatedAt:     c.updatedAt,
	}
}

// Subscribe returns a channel receiving a snapshot after every state change.
// Slow readers only see the latest snapshot. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		close(ch)

		return ch, func() {}
	}

	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = ch

	return ch, func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()

		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
}

func (c *Controller) notify() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	if len(c.subs) == 0 {
		return
	}

	snap := c.Snapshot()

	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot and keep the latest one.
			select {
			case <-ch:
			default:
			}

			select {
			case ch <- snap:
			default:
			}
		}
	}
}
