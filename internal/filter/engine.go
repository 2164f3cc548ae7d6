package filter

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/commsift/internal/config"
	"github.com/runnerr0/commsift/internal/model"
)

// Stats counts how many emails each reduction removed. The accumulator is
// owned by the caller and passed into every Filter invocation; concurrent
// invocations must each use their own.
type Stats struct {
	SimilarityFiltered   int `json:"similarity_filtered"`
	TemplateMassFiltered int `json:"template_mass_filtered"`
	TotalFiltered        int `json:"total_filtered"`
}

func (s *Stats) addSimilarity(n int) {
	s.SimilarityFiltered += n
	s.TotalFiltered += n
}

func (s *Stats) addTemplateMass(n int) {
	s.TemplateMassFiltered += n
	s.TotalFiltered += n
}

// Engine is the communication-noise filtering pipeline: classification,
// sender-scoped dedup, similarity grouping, and blast reduction. It is
// pure and synchronous; it performs no I/O and holds no locks.
type Engine struct {
	cfg        config.FilterConfig
	classifier *Classifier
	normalizer *Normalizer
	log        *zap.Logger
}

// NewEngine builds an engine from the filter configuration. A nil logger
// is replaced with a no-op one.
func NewEngine(cfg config.FilterConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		normalizer: NewNormalizer(),
		log:        log,
	}
}

// Classifier exposes the per-message rule cascade.
func (e *Engine) Classifier() *Classifier { return e.classifier }

// Normalizer exposes the text normalizer.
func (e *Engine) Normalizer() *Normalizer { return e.normalizer }

// Filter annotates every email with automation flags, then reduces each
// sender's set: high-volume template senders and blast groups collapse to
// one representative. The returned records keep their annotations; it is
// the caller's decision to drop records still flagged automated.
//
// Input order decides grouping anchors, so callers that care about
// deterministic output should pass records in a stable order.
func (e *Engine) Filter(emails []model.Email, stats *Stats) []model.Email {
	if len(emails) == 0 {
		return nil
	}

	senders, order := partitionBySender(emails)

	var kept []model.Email
	for _, sender := range order {
		msgs := senders[sender]
		e.annotateSender(msgs)
		kept = append(kept, e.reduceSender(msgs, stats)...)
	}

	e.log.Debug("email filtering applied",
		zap.Int("input", len(emails)),
		zap.Int("kept", len(kept)),
		zap.Int("similarity_filtered", stats.SimilarityFiltered),
		zap.Int("template_mass_filtered", stats.TemplateMassFiltered),
	)

	return kept
}

// DropAutomated returns only the records not flagged automated. Blast and
// high-volume representatives that were themselves flagged do not survive
// this cut; it mirrors the final step the orchestrator applies.
func DropAutomated(emails []model.Email) []model.Email {
	out := make([]model.Email, 0, len(emails))
	for _, e := range emails {
		if !e.IsAutomated {
			out = append(out, e)
		}
	}
	return out
}

// partitionBySender groups emails by lowercased sender address, keeping
// first-seen sender order so output is deterministic for a given input.
func partitionBySender(emails []model.Email) (map[string][]model.Email, []string) {
	groups := make(map[string][]model.Email)
	var order []string
	for _, email := range emails {
		key := strings.ToLower(email.Sender.Email)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], email)
	}
	return groups, order
}

// annotateSender sets the automation flags on every message from one
// sender: first the rule cascade, then the sender-scoped similarity
// override. The dedup pass intentionally compares raw subject and snippet
// text; it is a secondary signal and normalization would make it too
// eager. Every record is compared against all others, so if A is marked
// because of B, B's own pass will find A and mark B as well.
func (e *Engine) annotateSender(msgs []model.Email) {
	verdicts := make([]Verdict, len(msgs))
	for i := range msgs {
		verdicts[i] = e.classifier.Classify(
			msgs[i].Subject, msgs[i].Snippet,
			msgs[i].Sender.Email, msgs[i].Sender.Title,
		)
	}

	for i := range msgs {
		v := verdicts[i]
		if !v.Automated && len(msgs) > 1 {
			for j := range msgs {
				if i == j {
					continue
				}
				subjectSim := Similarity(msgs[i].Subject, msgs[j].Subject)
				snippetSim := Similarity(msgs[i].Snippet, msgs[j].Snippet)
				if max64(subjectSim, snippetSim) >= e.cfg.DedupThreshold {
					v.Automated = true
					v.Template = true
					break
				}
			}
		}
		msgs[i].IsAutomated = v.Automated
		msgs[i].IsTemplate = v.Template
	}
}

// reduceSender collapses one sender's annotated messages. High-volume
// template senders keep a single representative for the whole set;
// everyone else is grouped by normalized content similarity and each
// blast group keeps one representative.
func (e *Engine) reduceSender(msgs []model.Email, stats *Stats) []model.Email {
	// The high-volume check uses the rule cascade alone, not the dedup
	// overrides: it asks how template-like the sender's aggregate
	// behavior is, independent of intra-sender duplication.
	templateCount := 0
	for i := range msgs {
		v := e.classifier.Classify(
			msgs[i].Subject, msgs[i].Snippet,
			msgs[i].Sender.Email, msgs[i].Sender.Title,
		)
		if v.Template {
			templateCount++
		}
	}

	if len(msgs) >= e.cfg.HighVolumeMinMessages {
		rate := float64(templateCount) / float64(len(msgs))
		if rate >= e.cfg.HighVolumeTemplateRate {
			stats.addTemplateMass(len(msgs) - 1)
			return []model.Email{selectRepresentative(msgs)}
		}
	}

	var out []model.Email
	for _, group := range e.groupBySimilarity(msgs, e.cfg.SimilarityThreshold) {
		if len(group) > 1 && e.isBlast(group) {
			stats.addSimilarity(len(group) - 1)
			out = append(out, selectRepresentative(group))
		} else {
			out = append(out, group...)
		}
	}
	return out
}

// groupBySimilarity clusters messages greedily: each unassigned message
// anchors a new group and pulls in every later unassigned message whose
// normalized content reaches the threshold. The relation is deliberately
// non-transitive (members are compared to the anchor only) and therefore
// sensitive to input order.
func (e *Engine) groupBySimilarity(msgs []model.Email, threshold float64) [][]model.Email {
	if len(msgs) == 0 {
		return nil
	}

	normalized := make([]string, len(msgs))
	for i := range msgs {
		normalized[i] = e.normalizer.Normalize(msgs[i].Content())
	}

	var groups [][]model.Email
	assigned := make([]bool, len(msgs))

	for i := range msgs {
		if assigned[i] {
			continue
		}
		group := []model.Email{msgs[i]}
		assigned[i] = true

		for j := i + 1; j < len(msgs); j++ {
			if assigned[j] {
				continue
			}
			if Similarity(normalized[i], normalized[j]) >= threshold {
				group = append(group, msgs[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}

	return groups
}

// isBlast reports whether a similarity group looks like a mass send.
// With two or more parseable timestamps the deciding signal is the send
// span; without them a multi-member group is conservatively assumed to be
// a blast.
func (e *Engine) isBlast(group []model.Email) bool {
	if len(group) <= 1 {
		return false
	}

	var earliest, latest time.Time
	count := 0
	for _, msg := range group {
		if msg.SentAt.IsZero() {
			continue
		}
		if count == 0 || msg.SentAt.Before(earliest) {
			earliest = msg.SentAt
		}
		if count == 0 || msg.SentAt.After(latest) {
			latest = msg.SentAt
		}
		count++
	}

	if count >= 2 {
		window := time.Duration(e.cfg.BlastWindowHours) * time.Hour
		return latest.Sub(earliest) <= window
	}

	return len(group) >= 2
}

// selectRepresentative picks the group member with the longest raw
// subject+snippet text, a proxy for the most complete message. Ties keep
// the earliest member in input order.
func selectRepresentative(group []model.Email) model.Email {
	best := group[0]
	bestLen := len(best.Subject) + len(best.Snippet)
	for _, msg := range group[1:] {
		if l := len(msg.Subject) + len(msg.Snippet); l > bestLen {
			best = msg
			bestLen = l
		}
	}
	return best
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
