package dialogue

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/aidbuddy/internal/logging"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
)

// Intent names reported in Reply.Intent.
const (
	IntentEmpty     = "empty"
	IntentSensitive = "sensitive"
	IntentQuick     = "quick_start"
	IntentEstimate  = "estimate"
	IntentDocuments = "documents"
	IntentApply     = "apply"
	IntentMenu      = "menu"
)

// Reply is the outcome of one turn.
type Reply struct {
	Text string
	// Intent names the rule that produced the reply. Sub-flow answers are
	// reported as "<mode>.<detail>", e.g. "estimate.household_size".
	Intent string
	// Changed reports whether the turn mutated the state.
	Changed bool
	// Estimate is set on the turn that completes the estimate form.
	Estimate *estimate.Result
}

// Router classifies each turn and advances the session state.
type Router struct {
	table  estimate.Table
	rules  []rule
	logger *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTable sets the award-year configuration used for estimates.
func WithTable(t estimate.Table) Option {
	return func(r *Router) {
		if len(t) > 0 {
			r.table = t
		}
	}
}

// NewRouter returns a router with the default award-year table.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		table:  estimate.DefaultTable(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.rules = defaultRules()
	return r
}

// Table returns the award-year table the router estimates with.
func (r *Router) Table() estimate.Table {
	return r.table
}

// HandleTurn applies one user message to s in place. Unrecognised input is
// never an error; errors only signal a misconfigured award-year table.
func (r *Router) HandleTurn(s *domain.State, raw string) (Reply, error) {
	t := newTurn(raw)
	before := s.Clone()

	for _, rl := range r.rules {
		if !rl.match(s, t) {
			continue
		}
		reply, err := rl.apply(r, s, t)
		if err != nil {
			return Reply{}, fmt.Errorf("rule %s: %w", rl.name, err)
		}
		if reply.Intent == "" {
			reply.Intent = rl.name
		}
		reply.Changed = domain.Diff(before, s) != nil
		r.logger.Debug("turn routed",
			"intent", reply.Intent,
			"mode", s.Mode(),
			"step", s.Flow.Step(),
			"input_len", len(t.text),
			"changed", reply.Changed,
		)
		return reply, nil
	}
	// The menu rule always matches.
	return Reply{Text: MenuMessage, Intent: IntentMenu}, nil
}

// turn is the normalised view of one user message.
type turn struct {
	text string // trimmed
	low  string // trimmed, lower-cased, typographic apostrophes folded
}

func newTurn(raw string) turn {
	text := strings.TrimSpace(raw)
	low := strings.ToLower(text)
	low = strings.NewReplacer("’", "'", "‘", "'").Replace(low)
	return turn{text: text, low: low}
}

func (t turn) blank() bool { return t.text == "" }

func (t turn) containsAny(words []string) bool {
	for _, w := range words {
		if strings.Contains(t.low, w) {
			return true
		}
	}
	return false
}
