package monitor

import "time"

// coalescer merges received chunks arriving within one window into a single
// history entry, so a message split across several reads shows up as one
// record. The entry keeps the timestamp of its first chunk.
type coalescer struct {
	window  time.Duration
	pending HistoryEntry
}

// absorb folds a chunk read at the given time into the pending entry. It
// returns the completed previous entry when the chunk opens a new burst,
// nil while the burst is still growing.
func (c *coalescer) absorb(chunk []byte, at time.Time) *HistoryEntry {
	if len(c.pending.Data) > 0 && at.Sub(c.pending.At) < c.window {
		c.pending.Data = append(c.pending.Data, chunk...)
		return nil
	}

	var flushed *HistoryEntry
	if len(c.pending.Data) > 0 {
		done := c.pending
		flushed = &done
	}
	c.pending = HistoryEntry{At: at, Dir: Rx, Data: chunk}
	return flushed
}

// reset drops the pending entry without flushing it. A trailing burst that
// never saw a follow-up chunk is lost, matching the stop semantics: nothing
// from a closed connection may surface later.
func (c *coalescer) reset() {
	c.pending = HistoryEntry{}
}
