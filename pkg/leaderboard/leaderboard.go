// Package leaderboard maintains an ordered table of builder activity scores
// and computes a keccak256 merkle commitment over it, so a rewards round can
// publish a single root that commits to every builder's score.
package leaderboard

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	merkletree "github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"

	"github.com/wearedood/web3/pkg/util"
)

// Entry is a single builder's standing in a rewards round.
type Entry struct {
	Builder common.Address
	Score   uint64
}

// Leaderboard collects builder scores for one rewards round. It is not safe
// for concurrent use; callers assemble it from a single goroutine.
type Leaderboard struct {
	entries map[common.Address]uint64
}

// NewLeaderboard creates an empty leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		entries: make(map[common.Address]uint64),
	}
}

// SetScore records a builder's score, replacing any previous value for the
// same builder.
func (l *Leaderboard) SetScore(builder common.Address, score uint64) {
	l.entries[builder] = score
}

// Score returns the recorded score for a builder.
func (l *Leaderboard) Score(builder common.Address) (uint64, bool) {
	score, ok := l.entries[builder]
	return score, ok
}

// Len returns the number of builders on the leaderboard.
func (l *Leaderboard) Len() int {
	return len(l.entries)
}

// RankedEntries returns the entries ordered by score descending, with ties
// broken by ascending builder address. The ordering is deterministic: the
// same set of scores always yields the same ranking, and therefore the same
// commitment root.
func (l *Leaderboard) RankedEntries() []Entry {
	ranked := make([]Entry, 0, len(l.entries))
	for builder, score := range l.entries {
		ranked = append(ranked, Entry{Builder: builder, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Builder.Cmp(ranked[j].Builder) < 0
	})
	return ranked
}

// EncodeEntryLeaf encodes a leaderboard entry as a merkle leaf: the 20-byte
// builder address followed by the score as an 8-byte big-endian integer.
func EncodeEntryLeaf(entry Entry) []byte {
	leaf := make([]byte, common.AddressLength+8)
	copy(leaf, entry.Builder.Bytes())
	binary.BigEndian.PutUint64(leaf[common.AddressLength:], entry.Score)
	return leaf
}

// CommitmentRoot computes the keccak256 merkle root over the ranked entries.
// An empty leaderboard commits to the zero root.
//
// Returns:
//   - [32]byte: The merkle root over the encoded entries
//   - error: An error if the merkle tree cannot be constructed
func (l *Leaderboard) CommitmentRoot() ([32]byte, error) {
	var zeroRoot [32]byte

	if len(l.entries) == 0 {
		return zeroRoot, nil
	}

	leaves := util.Map(l.RankedEntries(), func(entry Entry, i uint64) []byte {
		return EncodeEntryLeaf(entry)
	})

	tree, err := merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(keccak256.New()),
	)
	if err != nil {
		return zeroRoot, fmt.Errorf("failed to create merkle tree: %w", err)
	}

	return [32]byte(tree.Root()), nil
}
