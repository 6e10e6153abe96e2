package tui

import (
	"time"

	"github.com/Veraticus/statement-flow/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Location *time.Location
	Title    string
	Width    int
	Height   int
	// FetchOnStart reloads from the provider when the session starts empty.
	FetchOnStart bool
	ShowEndToEnd bool
	ShowHelp     bool
	AltScreen    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Location:     time.Local,
		Title:        "Statement",
		Width:        100,
		Height:       30,
		FetchOnStart: true,
		ShowHelp:     true,
		AltScreen:    true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithLocation sets the zone dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		if loc != nil {
			c.Location = loc
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithFetchOnStart controls the initial reload of an empty session.
func WithFetchOnStart(enabled bool) Option {
	return func(c *Config) {
		c.FetchOnStart = enabled
	}
}

// WithEndToEnd shows the end-to-end code column.
func WithEndToEnd(enabled bool) Option {
	return func(c *Config) {
		c.ShowEndToEnd = enabled
	}
}

// WithAltScreen controls whether the program takes over the terminal.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
