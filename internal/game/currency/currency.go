// Package currency tracks the run's gold total and the visible dragon count.
package currency

import "fmt"

// Gold is the run's gold total.
//
// Invariant: Total() >= 0.
type Gold struct {
	total    int
	onChange func(total int)
}

// NewGold returns a zero gold total that reports every change to onChange.
//
// Precondition: onChange may be nil.
func NewGold(onChange func(total int)) *Gold {
	return &Gold{onChange: onChange}
}

// Total returns the current amount.
func (g *Gold) Total() int { return g.total }

// Add credits amount.
//
// Postcondition: amounts <= 0 are ignored and report false; otherwise the total
// grows by amount and the observer is notified.
func (g *Gold) Add(amount int) bool {
	if amount <= 0 {
		return false
	}
	g.total += amount
	g.notify()
	return true
}

// Reset sets the total to max(0, value).
func (g *Gold) Reset(value int) {
	g.total = max(0, value)
	g.notify()
}

func (g *Gold) notify() {
	if g.onChange != nil {
		g.onChange(g.total)
	}
}

// String formats the total for display.
func (g *Gold) String() string {
	return FormatGold(g.total)
}

// FormatGold returns "1 gold coin" or "N gold coins".
func FormatGold(n int) string {
	if n == 1 {
		return "1 gold coin"
	}
	return fmt.Sprintf("%d gold coins", n)
}

// ChestReward is the gold a chest pays in round n: round(n * 1.5) with halves
// rounded up. Rounds below 1 count as 1.
//
// Postcondition: ChestReward(n) == (3*max(n,1)+1)/2.
func ChestReward(round int) int {
	n := max(round, 1)
	return (3*n + 1) / 2
}

// DragonCounter mirrors the number of dragons waiting in the dragon zone.
//
// Invariant: Count() >= 0.
type DragonCounter struct {
	count    int
	onChange func(count int)
}

// NewDragonCounter returns a zero counter that reports changes to onChange.
func NewDragonCounter(onChange func(count int)) *DragonCounter {
	return &DragonCounter{onChange: onChange}
}

// Count returns the current value.
func (d *DragonCounter) Count() int { return d.count }

// Set assigns max(0, n), notifying only when the value changes.
func (d *DragonCounter) Set(n int) {
	n = max(0, n)
	if n == d.count {
		return
	}
	d.count = n
	if d.onChange != nil {
		d.onChange(n)
	}
}

// Increment adds one.
func (d *DragonCounter) Increment() { d.Set(d.count + 1) }

// Decrement subtracts amount, flooring at zero. Negative amounts are ignored.
func (d *DragonCounter) Decrement(amount int) { d.Set(d.count - max(0, amount)) }

// Reset sets the count to zero.
func (d *DragonCounter) Reset() { d.Set(0) }
