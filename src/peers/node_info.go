package peers

import "fmt"

// ShardRange is the half-open interval [Low, High) of shards.
type ShardRange struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// NewShardRange panics if high < low.
func NewShardRange(low, high int64) ShardRange {
	if high < low {
		panic(fmt.Sprintf("invalid shard range [%d, %d)", low, high))
	}
	return ShardRange{Low: low, High: high}
}

// Contains ...
func (r ShardRange) Contains(shard int64) bool {
	return shard >= r.Low && shard < r.High
}

// Span is the number of shards in the range.
func (r ShardRange) Span() uint64 {
	return uint64(r.High - r.Low)
}

func (r ShardRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Low, r.High)
}

// ShardSpace is the set of shards a node serves.
type ShardSpace struct {
	Anchor int64      `json:"anchor"`
	Range  ShardRange `json:"range"`
}

// NewShardSpace ...
func NewShardSpace(anchor int64, r ShardRange) ShardSpace {
	return ShardSpace{
		Anchor: anchor,
		Range:  r,
	}
}

// Contains ...
func (s ShardSpace) Contains(shard int64) bool {
	return s.Range.Contains(shard)
}

// Intersects reports whether at least one of shards is served.
func (s ShardSpace) Intersects(shards []int64) bool {
	for _, shard := range shards {
		if s.Contains(shard) {
			return true
		}
	}
	return false
}

// NodeInfo is what a node advertises about itself through Network.getInfo.
type NodeInfo struct {
	Shards   ShardSpace `json:"shards"`
	Agent    string     `json:"agent,omitempty"`
	Protocol string     `json:"protocol,omitempty"`
}

// Serves reports whether the node serves at least one of shards.
func (i *NodeInfo) Serves(shards []int64) bool {
	return i.Shards.Intersects(shards)
}
