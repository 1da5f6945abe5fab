// Package pipeline runs one analytics question end to end:
// classify, compose, generate, extract, assemble.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"askdata/internal/deck"
	"askdata/internal/extract"
	"askdata/internal/intent"
	"askdata/internal/llm"
	"askdata/internal/prompt"
	"askdata/internal/session"
	"askdata/internal/types"
)

type Stage string

const (
	StageClassify Stage = "classify"
	StageCompose  Stage = "compose"
	StageGenerate Stage = "generate"
	StageExtract  Stage = "extract"
	StageAssemble Stage = "assemble"
	StageDone     Stage = "done"
)

type Event struct {
	Stage  Stage        `json:"stage"`
	Intent types.Intent `json:"intent,omitempty"`
	At     time.Time    `json:"at"`
}

// Observer receives stage events synchronously, in order.
type Observer func(Event)

type Request struct {
	Query   string
	Profile *types.DatasetProfile
	// Notes are degradations found while validating the profile.
	Notes    []string
	Counter  *session.Counter
	Observer Observer
}

// Result is the caller-facing Response plus the intermediate values that
// produced it.
type Result struct {
	Response  Response
	Intent    types.Intent
	Prompt    string
	Artifacts types.Artifacts
	Deck      *deck.Deck
}

type Pipeline struct {
	client llm.Client
	log    zerolog.Logger
	now    func() time.Time
}

type Option func(*Pipeline)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(client llm.Client, opts ...Option) *Pipeline {
	p := &Pipeline{client: client, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one question. The only failures are session.ErrLimitReached
// and *llm.GenerationError; everything after generation always succeeds.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Counter.Take(); err != nil {
		return nil, err
	}
	emit := func(s Stage, in types.Intent) {
		if req.Observer != nil {
			req.Observer(Event{Stage: s, Intent: in, At: p.now()})
		}
	}
	for _, n := range req.Notes {
		p.log.Warn().Str("note", n).Msg("profile degraded")
	}

	emit(StageClassify, "")
	in := intent.Classify(req.Query)
	RequestsTotal.WithLabelValues(string(in)).Inc()

	emit(StageCompose, in)
	pr := prompt.Compose(req.Query, req.Profile, in)

	if err := ctx.Err(); err != nil {
		return nil, llm.NewGenerationError(llm.Generic, "request cancelled", err)
	}

	emit(StageGenerate, in)
	start := time.Now()
	text, err := p.client.GenerateText(ctx, pr)
	GenerationDuration.WithLabelValues(p.client.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		ge := llm.AsGenerationError(err)
		GenerationErrorsTotal.WithLabelValues(string(ge.Kind)).Inc()
		p.log.Error().Err(ge).Str("intent", string(in)).Msg("generation failed")
		return nil, ge
	}
	ts := p.now().UnixMilli()

	emit(StageExtract, in)
	art := extract.Extract(text, req.Profile)

	res := &Result{Intent: in, Prompt: pr, Artifacts: art}
	if in == types.IntentPresentation {
		emit(StageAssemble, in)
		d := deck.Assemble(text, art, req.Profile, in, ts)
		if d.Fallback {
			FallbackDecksTotal.Inc()
		}
		res.Deck = &d
	}
	res.Response = buildResponse(text, ts, in, art, req.Profile, res.Deck)

	p.log.Info().
		Str("intent", string(in)).
		Int("insights", len(art.Insights)).
		Int("recommendations", len(art.Recommendations)).
		Msg("pipeline complete")
	emit(StageDone, in)
	return res, nil
}
