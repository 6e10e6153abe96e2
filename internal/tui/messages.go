package tui

import (
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/statement"
)

// fetchDoneMsg reports the end of a reload, refresh or load-more.
type fetchDoneMsg struct {
	err    error
	result *statement.Result
	mode   model.FetchMode
	added  int
}

// restoredMsg reports how many cached transactions were restored.
type restoredMsg struct {
	err   error
	count int
}
