package discovery

import (
	"net/url"
	"sort"
	"strings"

	"github.com/yt-analytics/yt-analytics-go/internal/youtube"
)

// Tier classifies a channel by its total upload count.
type Tier int

const (
	TierEmpty Tier = iota
	TierSmall
	TierMedium
	TierLarge
)

func (t Tier) String() string {
	switch t {
	case TierEmpty:
		return "empty"
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	}
	return "unknown"
}

// Thresholds are the inclusion rules of the relevance filter. "Related" is the
// candidate's accumulated score, i.e. how many matching uploads were seen.
type Thresholds struct {
	SmallMaxVideos  int64 // exclusive upper bound of the small tier
	MediumMaxVideos int64 // exclusive upper bound of the medium tier

	SmallMin       int
	SmallTopicMin  int
	MediumMin      int
	MediumTopicMin int
	LargeMin       int
	LargeTopicMin  int

	// Large channels may also qualify with LargeRatioMin related uploads making
	// up at least LargeRatio of their catalogue.
	LargeRatioMin int
	LargeRatio    float64

	DirectBonus int
	TopicBonus  int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SmallMaxVideos:  1000,
		MediumMaxVideos: 5000,
		SmallMin:        3,
		SmallTopicMin:   2,
		MediumMin:       5,
		MediumTopicMin:  3,
		LargeMin:        10,
		LargeTopicMin:   5,
		LargeRatioMin:   5,
		LargeRatio:      0.01,
		DirectBonus:     10,
		TopicBonus:      5,
	}
}

// Classify returns the tier for a channel with videoCount uploads.
func (th Thresholds) Classify(videoCount int64) Tier {
	switch {
	case videoCount <= 0:
		return TierEmpty
	case videoCount < th.SmallMaxVideos:
		return TierSmall
	case videoCount < th.MediumMaxVideos:
		return TierMedium
	default:
		return TierLarge
	}
}

// Admit reports whether a non-direct candidate with related matching uploads
// out of total passes its tier's threshold.
func (th Thresholds) Admit(related int, total int64, topicMatch bool) bool {
	switch th.Classify(total) {
	case TierSmall:
		return related >= pick(topicMatch, th.SmallTopicMin, th.SmallMin)
	case TierMedium:
		return related >= pick(topicMatch, th.MediumTopicMin, th.MediumMin)
	case TierLarge:
		if related >= pick(topicMatch, th.LargeTopicMin, th.LargeMin) {
			return true
		}
		return related >= th.LargeRatioMin && float64(related)/float64(total) >= th.LargeRatio
	}
	return false
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

// TopicLabels turns topic category URLs such as
// https://en.wikipedia.org/wiki/Video_game_culture into "Video game culture".
func TopicLabels(refs []string) []string {
	labels := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		seg := strings.TrimRight(ref, "/")
		if i := strings.LastIndex(seg, "/"); i >= 0 {
			seg = seg[i+1:]
		}
		if unescaped, err := url.PathUnescape(seg); err == nil {
			seg = unescaped
		}
		label := strings.TrimSpace(strings.ReplaceAll(seg, "_", " "))
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

// TopicMatch reports whether the query and any topic label contain one another,
// case-insensitively.
func TopicMatch(query string, labels []string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, l := range labels {
		l = strings.ToLower(l)
		if l == "" {
			continue
		}
		if strings.Contains(l, q) || strings.Contains(q, l) {
			return true
		}
	}
	return false
}

// Scored is a candidate that survived filtering, with its effective score.
type Scored struct {
	ChannelID  string
	Score      int
	TopicMatch bool
}

// Filter applies the tiered relevance thresholds to every candidate that has a
// fetched detail and returns survivors by descending effective score. Ties keep
// discovery order.
func Filter(set *CandidateSet, details map[string]youtube.ChannelDetail, query string, th Thresholds) []Scored {
	var out []Scored
	for _, c := range set.Candidates() {
		d, ok := details[c.ChannelID]
		if !ok {
			continue
		}

		if c.Direct {
			out = append(out, Scored{ChannelID: c.ChannelID, Score: c.Score + th.DirectBonus})
			continue
		}

		topic := TopicMatch(query, TopicLabels(d.TopicCategories))
		if !th.Admit(c.Score, d.VideoCount, topic) {
			continue
		}

		s := Scored{ChannelID: c.ChannelID, Score: c.Score, TopicMatch: topic}
		if topic {
			s.Score += th.TopicBonus
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
