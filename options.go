package quorum

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/errors"
	"github.com/agentstation/quorum/pkg/profile"
)

// options holds the client configuration.
type options struct {
	profile      *profile.Profile
	logger       *zerolog.Logger
	force        bool
	validateOnly bool
	windowDays   int
	clock        func() time.Time
}

func defaults() *options {
	return &options{
		profile:    profile.Default(),
		windowDays: constants.DefaultWindowDays,
		clock:      time.Now,
	}
}

// Option is a function that configures a Client.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithProfile sets the domain profile. The profile is validated and copied.
func WithProfile(p *profile.Profile) Option {
	return func(o *options) error {
		if p == nil {
			return &errors.ValidationError{
				Field:   "profile",
				Message: "cannot be nil",
			}
		}
		if err := p.Validate(); err != nil {
			return err
		}
		o.profile = p.Clone()
		return nil
	}
}

// WithLogger sets the logger passed to every engine.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithForce lets daily runs continue past the validation gate.
func WithForce(enabled bool) Option {
	return func(o *options) error {
		o.force = enabled
		return nil
	}
}

// WithValidateOnly makes daily runs stop after the validation gate without
// writing a report.
func WithValidateOnly(enabled bool) Option {
	return func(o *options) error {
		o.validateOnly = enabled
		return nil
	}
}

// WithWindowDays sets the length of the default weekly window.
func WithWindowDays(days int) Option {
	return func(o *options) error {
		if days < 1 {
			return &errors.ValidationError{
				Field:   "window_days",
				Value:   days,
				Message: "must be at least 1",
			}
		}
		o.windowDays = days
		return nil
	}
}

// WithClock sets the time source used for the default weekly window and
// report timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}
