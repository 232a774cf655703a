package blink

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"capsulex-blink/actionerr"
	"capsulex-blink/capsuleprogram"
	"capsulex-blink/game"
	"capsulex-blink/logging"
	"capsulex-blink/metrics"
)

// Gateway is the read side of the CapsuleX backend.
type Gateway interface {
	Capsule(ctx context.Context, capsuleID string) (*game.CapsuleRecord, error)
	GameLeaderboard(ctx context.Context, capsuleID string) ([]game.LeaderboardEntry, error)
	GlobalLeaderboard(ctx context.Context, limit, offset int) ([]game.GlobalLeaderboardEntry, error)
	UserStats(ctx context.Context, wallet string) (*game.UserStats, error)
	CapsuleAndGame(ctx context.Context, capsuleID string) (*game.CapsuleRecord, *game.GameRecord, error)
	CapsuleAndLeaderboard(ctx context.Context, capsuleID string) (*game.CapsuleRecord, []game.LeaderboardEntry, error)
}

// ActionRequest - one inbound action POST, already decoded
type ActionRequest struct {
	CapsuleID string
	Account   capsuleprogram.Account
	Action    game.Action
}

// Service runs action requests: fetch, validate, assemble, format.
type Service struct {
	gateway   Gateway
	assembler *capsuleprogram.Assembler
	formatter *Formatter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records action outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(gateway Gateway, assembler *capsuleprogram.Assembler, formatter *Formatter, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		gateway:   gateway,
		assembler: assembler,
		formatter: formatter,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Formatter returns the formatter the service renders with.
func (s *Service) Formatter() *Formatter { return s.formatter }

// Post builds the transaction envelope for req. Failures come back as an
// error envelope, never as a partially built transaction.
func (s *Service) Post(ctx context.Context, req ActionRequest) *Envelope {
	log := logging.For(ctx, s.logger).With(
		zap.String("capsule_id", req.CapsuleID),
		zap.String("account", req.Account.PublicKey().String()),
		zap.String("action", string(req.Action.Kind())),
	)

	v := &postVisitor{ctx: ctx, s: s, req: req}
	err := req.Action.Accept(v)
	if err != nil {
		env := s.formatter.ErrorEnvelope(err)
		s.recordAction(req.Action.Kind(), string(env.ErrorKind))
		if env.Status >= 500 {
			log.Error("action failed", zap.String("kind", string(env.ErrorKind)), zap.Error(err))
		} else {
			log.Info("action rejected", zap.String("kind", string(env.ErrorKind)), zap.Error(err))
		}
		return env
	}

	s.recordAction(req.Action.Kind(), "ok")
	log.Info("transaction built", zap.String("next", v.out.NextLink))
	return v.out
}

// Reject records a request that failed before an action could be parsed.
func (s *Service) Reject(ctx context.Context, kind game.Kind, err error) *Envelope {
	env := s.formatter.ErrorEnvelope(err)
	s.recordAction(kind, string(env.ErrorKind))
	logging.For(ctx, s.logger).Info("action rejected",
		zap.String("action", string(kind)),
		zap.String("kind", string(env.ErrorKind)),
		zap.Error(err),
	)
	return env
}

func (s *Service) recordAction(kind game.Kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAction(string(kind), outcome)
	}
}

// postVisitor handles each action kind of a POST.
type postVisitor struct {
	ctx context.Context
	s   *Service
	req ActionRequest
	out *Envelope
}

func (v *postVisitor) View(game.View) error {
	return v.carrier(
		fmt.Sprintf("📊 Viewing details for Time Capsule %s", v.req.CapsuleID),
		GameDetailsPath(v.req.CapsuleID),
	)
}

func (v *postVisitor) Leaderboard(game.Leaderboard) error {
	return v.carrier(
		fmt.Sprintf("🏆 Checking leaderboard for Time Capsule %s", v.req.CapsuleID),
		GameLeaderboardPath(v.req.CapsuleID),
	)
}

func (v *postVisitor) carrier(message, next string) error {
	shell, err := v.s.assembler.CarrierTransaction(v.ctx, v.req.Account)
	if err != nil {
		return err
	}
	v.out, err = v.s.formatter.TransactionEnvelope(shell, message, next)
	return err
}

func (v *postVisitor) Guess(guess game.Guess) error {
	capsule, record, err := v.s.gateway.CapsuleAndGame(v.ctx, v.req.CapsuleID)
	if err != nil {
		return err
	}
	if err := game.Validate(capsule, record, guess); err != nil {
		return err
	}

	shell, addrs, err := v.s.assembler.GuessTransaction(v.ctx, v.req.Account, capsule, record, guess)
	if err != nil {
		return err
	}
	logging.For(v.ctx, v.s.logger).Debug("submit_guess addresses",
		zap.Stringer("game", addrs.Game),
		zap.Stringer("guess", addrs.Guess),
		zap.Stringer("vault", addrs.Vault),
		zap.Uint32("guess_index", record.CurrentGuesses),
	)

	visibility := "public"
	if guess.Anonymous {
		visibility = "anonymous"
	}
	message := fmt.Sprintf("🎯 Submitted %s guess: \"%s\"", visibility, guess.Content)
	v.out, err = v.s.formatter.TransactionEnvelope(shell, message, "")
	return err
}

// GameDetails builds the game details blink.
func (s *Service) GameDetails(ctx context.Context, capsuleID string) (ActionGetResponse, error) {
	capsule, record, err := s.gateway.CapsuleAndGame(ctx, capsuleID)
	if err != nil {
		return ActionGetResponse{}, err
	}
	return s.formatter.GameDetails(capsuleID, capsule, record, s.now()), nil
}

// GameLeaderboard builds the per-game leaderboard blink of the chain.
func (s *Service) GameLeaderboard(ctx context.Context, capsuleID string) (ActionGetResponse, error) {
	capsule, entries, err := s.gateway.CapsuleAndLeaderboard(ctx, capsuleID)
	if err != nil {
		return ActionGetResponse{}, err
	}
	return s.formatter.GameLeaderboard(capsuleID, capsule, entries, s.now()), nil
}

// GlobalLeaderboard builds the global ranking blink.
func (s *Service) GlobalLeaderboard(ctx context.Context, origin string) (ActionGetResponse, error) {
	entries, err := s.gateway.GlobalLeaderboard(ctx, 10, 0)
	if err != nil {
		return ActionGetResponse{}, err
	}
	return s.formatter.GlobalLeaderboard(entries, origin), nil
}

// UserStats builds the stats blink of wallet. An empty wallet yields the
// input form and a wallet without activity the onboarding card.
func (s *Service) UserStats(ctx context.Context, wallet, origin string) (ActionGetResponse, error) {
	if wallet == "" {
		return s.formatter.UserStatsForm(origin), nil
	}
	acct, err := capsuleprogram.ParseAccount(wallet)
	if err != nil {
		return ActionGetResponse{}, err
	}

	stats, err := s.gateway.UserStats(ctx, acct.String())
	if err != nil {
		logging.For(ctx, s.logger).Info("user stats unavailable", zap.String("wallet", acct.String()), zap.Error(err))
		return s.formatter.UserStart(origin), nil
	}
	return s.formatter.UserStats(stats, origin), nil
}

// GameLeaderboardSummary builds the standalone leaderboard blink of a game.
func (s *Service) GameLeaderboardSummary(ctx context.Context, capsuleID, origin string) (ActionGetResponse, error) {
	capsule, err := s.gateway.Capsule(ctx, capsuleID)
	if err != nil {
		return ActionGetResponse{}, actionerr.NewNotFound("Game", err)
	}
	if !capsule.IsGamified {
		return ActionGetResponse{}, actionerr.NewNotGamified()
	}
	entries, err := s.gateway.GameLeaderboard(ctx, capsuleID)
	if err != nil {
		return ActionGetResponse{}, actionerr.NewNotFound("Game", err)
	}
	return s.formatter.GameLeaderboardSummary(capsuleID, capsule, entries, s.now(), origin), nil
}
