package discovery

import "github.com/yt-analytics/yt-analytics-go/internal/youtube"

// Score contributions per discovery event.
const (
	DirectMatchBonus   = 5
	ContentMatchWeight = 1
)

// Candidate is a channel seen during one pipeline run, pending relevance filtering.
type Candidate struct {
	ChannelID string
	Score     int
	Direct    bool
}

// Bump raises the score by n. Scores never decrease.
func (c *Candidate) Bump(n int) {
	if n > 0 {
		c.Score += n
	}
}

// CandidateSet holds candidates keyed by channel id, remembering first-sighting
// order so later stable sorts are deterministic.
type CandidateSet struct {
	byID  map[string]*Candidate
	order []string
}

func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byID: make(map[string]*Candidate)}
}

// Observe records one sighting of channelID worth n points. A direct sighting
// flags the candidate permanently.
func (s *CandidateSet) Observe(channelID string, n int, direct bool) {
	if channelID == "" {
		return
	}
	c, ok := s.byID[channelID]
	if !ok {
		c = &Candidate{ChannelID: channelID}
		s.byID[channelID] = c
		s.order = append(s.order, channelID)
	}
	c.Bump(n)
	if direct {
		c.Direct = true
	}
}

func (s *CandidateSet) Get(channelID string) (*Candidate, bool) {
	c, ok := s.byID[channelID]
	return c, ok
}

func (s *CandidateSet) Len() int { return len(s.order) }

// IDs returns channel ids in discovery order.
func (s *CandidateSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Candidates returns the candidates in discovery order.
func (s *CandidateSet) Candidates() []*Candidate {
	out := make([]*Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Aggregate merges direct channel hits and content hits into one scored set.
// Direct hits are applied first, so they lead the discovery order.
func Aggregate(direct, content []youtube.SearchItem) *CandidateSet {
	set := NewCandidateSet()
	for _, it := range direct {
		set.Observe(it.ChannelID, DirectMatchBonus, true)
	}
	for _, it := range content {
		set.Observe(it.ChannelID, ContentMatchWeight, false)
	}
	return set
}
