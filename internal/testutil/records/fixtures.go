package records

import (
	"testing"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
)

// Fixture is a predefined statement scenario.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Records builds the scenario in kind's field layout.
	Records(t *testing.T, kind model.ProviderKind) []model.RawRecord

	// Noise returns the suppression configuration the scenario expects.
	Noise() provider.NoiseConfig
}

type fixture struct {
	build func(b *Builder) *Builder
	noise func() provider.NoiseConfig
	name  string
}

func (f *fixture) Name() string { return f.name }

func (f *fixture) Records(t *testing.T, kind model.ProviderKind) []model.RawRecord {
	t.Helper()
	return f.build(NewBuilder(t, kind)).Build()
}

func (f *fixture) Noise() provider.NoiseConfig {
	if f.noise == nil {
		return provider.DefaultNoiseConfig()
	}
	return f.noise()
}

// Predefined fixtures.
var (
	// FixtureDecoy is a credit of 100, a 0.50 decoy debit, and a credit of 50.
	FixtureDecoy Fixture = &fixture{
		name: "Decoy",
		build: func(b *Builder) *Builder {
			return b.Credit(100, DocumentA).Debit(0.50, DecoyDocument).Credit(50, DocumentB)
		},
		noise: func() provider.NoiseConfig {
			n := provider.DefaultNoiseConfig()
			n.DecoyDocuments = []string{DecoyDocument}
			return n
		},
	}

	// FixtureEndToEnd is three credits that all carry end-to-end codes.
	FixtureEndToEnd Fixture = &fixture{
		name: "EndToEnd",
		build: func(b *Builder) *Builder {
			return b.
				Credit(10, DocumentA).WithEndToEnd(EndToEnd(1)).
				Credit(20, DocumentB).WithEndToEnd(EndToEnd(2)).
				Debit(30, DocumentA).WithEndToEnd(EndToEnd(3))
		},
	}
)
