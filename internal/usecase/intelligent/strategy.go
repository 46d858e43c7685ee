package intelligent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/domain/query/enhancement"
	"github.com/kailas-cloud/mailsense/internal/domain/query/entity"
	"github.com/kailas-cloud/mailsense/internal/domain/query/filter"
	"github.com/kailas-cloud/mailsense/internal/domain/query/intent"
)

// Strategy names the post-processing applied to retrieved citations.
type Strategy string

// Strategy constants.
const (
	StrategySender  Strategy = "sender"
	StrategySummary Strategy = "summary"
	StrategyAction  Strategy = "action"
	StrategyUrgency Strategy = "urgency"
	StrategyGeneral Strategy = "general"
)

const (
	senderOverFetch  = 3
	senderFetchCap   = 25
	summaryOverFetch = 2
	summaryFetchCap  = 20

	actionTail  = " todo action required respond reply follow up complete finish submit"
	urgencyTail = " urgent important critical deadline asap emergency priority"

	unknownSender = "Unknown"
)

var (
	actionKeywords  = []string{"please", "need", "required", "asap", "deadline", "due", "complete", "respond"}
	urgencyKeywords = []string{"urgent", "asap", "critical", "deadline", "emergency", "important", "priority"}
)

// StrategyFor returns the strategy that handles an intent.
func StrategyFor(in intent.Intent) Strategy {
	switch in {
	case intent.SearchSender:
		return StrategySender
	case intent.AskSummary:
		return StrategySummary
	case intent.AskAction:
		return StrategyAction
	case intent.SearchUrgent:
		return StrategyUrgency
	default:
		return StrategyGeneral
	}
}

// plan carries everything a strategy needs for one query.
type plan struct {
	query   string
	enh     enhancement.Enhancement
	topK    int
	filters filter.Metadata
}

func (s *Service) execute(ctx context.Context, st Strategy, p plan) (*mail.Response, error) {
	switch st {
	case StrategySender:
		return s.senderFocused(ctx, p)
	case StrategySummary:
		return s.summaryFocused(ctx, p)
	case StrategyAction:
		return s.actionFocused(ctx, p)
	case StrategyUrgency:
		return s.urgencyFocused(ctx, p)
	default:
		return s.general(ctx, p)
	}
}

func (s *Service) fetch(ctx context.Context, query string, topK int, filters filter.Metadata) (*mail.Response, error) {
	resp, err := s.fetcher.Fetch(ctx, query, topK, filters)
	if err != nil {
		return nil, fmt.Errorf("fetch citations: %w", err)
	}
	out := *resp
	out.Citations = make([]mail.Citation, len(resp.Citations))
	copy(out.Citations, resp.Citations)
	return &out, nil
}

// senderFocused over-fetches and moves citations from the named senders to the front.
func (s *Service) senderFocused(ctx context.Context, p plan) (*mail.Response, error) {
	resp, err := s.fetch(ctx, p.query, min(p.topK*senderOverFetch, senderFetchCap), p.filters)
	if err != nil {
		return nil, err
	}

	names := p.enh.Entities().Values(entity.Names)
	if len(names) == 0 {
		// No names to promote, plain top_k.
		resp.Citations = truncate(resp.Citations, p.topK)
		return resp, nil
	}
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}

	var matches, others []mail.Citation
	for _, c := range resp.Citations {
		if containsAny(strings.ToLower(c.From), names) {
			matches = append(matches, c)
		} else {
			others = append(others, c)
		}
	}

	fill := max(p.topK-len(matches), 0)
	resp.Citations = truncate(append(matches, truncate(others, fill)...), p.topK)
	return resp, nil
}

// summaryFocused over-fetches and reports how many citations each sender contributed.
func (s *Service) summaryFocused(ctx context.Context, p plan) (*mail.Response, error) {
	resp, err := s.fetch(ctx, p.query, min(p.topK*summaryOverFetch, summaryFetchCap), p.filters)
	if err != nil {
		return nil, err
	}
	if len(resp.Citations) == 0 {
		return resp, nil
	}

	breakdown := make(map[string]int)
	for _, c := range resp.Citations {
		sender := c.From
		if sender == "" {
			sender = unknownSender
		}
		breakdown[sender]++
	}
	resp.SenderBreakdown = breakdown
	return resp, nil
}

// actionFocused ranks citations by how many action keywords their snippet contains.
func (s *Service) actionFocused(ctx context.Context, p plan) (*mail.Response, error) {
	resp, err := s.fetch(ctx, p.query+actionTail, p.topK, p.filters)
	if err != nil {
		return nil, err
	}

	for i := range resp.Citations {
		score := len(keywordsIn(strings.ToLower(resp.Citations[i].Snippet), actionKeywords))
		resp.Citations[i].ActionScore = &score
	}
	sort.SliceStable(resp.Citations, func(i, j int) bool {
		return *resp.Citations[i].ActionScore > *resp.Citations[j].ActionScore
	})
	return resp, nil
}

// urgencyFocused ranks citations by urgency keywords, subject hits weighing double.
func (s *Service) urgencyFocused(ctx context.Context, p plan) (*mail.Response, error) {
	resp, err := s.fetch(ctx, p.query+urgencyTail, p.topK, p.filters)
	if err != nil {
		return nil, err
	}

	for i := range resp.Citations {
		c := &resp.Citations[i]
		subject := strings.ToLower(c.Subject)
		snippet := strings.ToLower(c.Snippet)

		score := 2*len(keywordsIn(subject, urgencyKeywords)) + len(keywordsIn(snippet, urgencyKeywords))
		c.UrgencyScore = &score
		c.UrgencyIndicators = keywordsIn(subject+" "+snippet, urgencyKeywords)
	}
	sort.SliceStable(resp.Citations, func(i, j int) bool {
		return *resp.Citations[i].UrgencyScore > *resp.Citations[j].UrgencyScore
	})
	return resp, nil
}

// general fetches as asked and marks which extracted entities each citation mentions.
func (s *Service) general(ctx context.Context, p plan) (*mail.Response, error) {
	resp, err := s.fetch(ctx, p.query, p.topK, p.filters)
	if err != nil {
		return nil, err
	}

	entities := p.enh.Entities()
	if entities.IsEmpty() {
		return resp, nil
	}

	for i := range resp.Citations {
		c := &resp.Citations[i]
		text := strings.ToLower(c.Snippet + " " + c.Subject)
		var found []mail.EntityMatch
		for _, e := range entities.Entries() {
			for _, v := range e.Values {
				if strings.Contains(text, strings.ToLower(v)) {
					found = append(found, mail.EntityMatch{Type: e.Type, Value: v})
				}
			}
		}
		c.HighlightedEntities = found
	}
	return resp, nil
}

// keywordsIn returns the keywords contained in text, in vocabulary order.
func keywordsIn(text string, vocabulary []string) []string {
	var out []string
	for _, k := range vocabulary {
		if strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func truncate(cs []mail.Citation, n int) []mail.Citation {
	if len(cs) > n {
		return cs[:n]
	}
	return cs
}
