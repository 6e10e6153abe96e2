package provider

import (
	"strings"

	"github.com/Veraticus/statement-flow/internal/model"
)

// statusVocabulary maps provider status words (lower-cased) onto canonical statuses.
var statusVocabulary = map[string]model.Status{
	"success":          model.StatusSuccess,
	"successful":       model.StatusSuccess,
	"succeeded":        model.StatusSuccess,
	"completed":        model.StatusSuccess,
	"complete":         model.StatusSuccess,
	"settled":          model.StatusSuccess,
	"posted":           model.StatusSuccess,
	"approved":         model.StatusSuccess,
	"done":             model.StatusSuccess,
	"sucesso":          model.StatusSuccess,
	"concluido":        model.StatusSuccess,
	"concluída":        model.StatusSuccess,
	"concluida":        model.StatusSuccess,
	"efetivado":        model.StatusSuccess,
	"efetivada":        model.StatusSuccess,
	"liquidado":        model.StatusSuccess,
	"liquidada":        model.StatusSuccess,
	"pending":          model.StatusPending,
	"pendente":         model.StatusPending,
	"scheduled":        model.StatusPending,
	"agendado":         model.StatusPending,
	"agendada":         model.StatusPending,
	"waiting":          model.StatusPending,
	"aguardando":       model.StatusPending,
	"processing":       model.StatusProcessing,
	"in_progress":      model.StatusProcessing,
	"in progress":      model.StatusProcessing,
	"processando":      model.StatusProcessing,
	"em_processamento": model.StatusProcessing,
	"em processamento": model.StatusProcessing,
	"failed":           model.StatusFailed,
	"failure":          model.StatusFailed,
	"error":            model.StatusFailed,
	"rejected":         model.StatusFailed,
	"denied":           model.StatusFailed,
	"falha":            model.StatusFailed,
	"erro":             model.StatusFailed,
	"rejeitado":        model.StatusFailed,
	"rejeitada":        model.StatusFailed,
	"cancelled":        model.StatusCancelled,
	"canceled":         model.StatusCancelled,
	"cancelado":        model.StatusCancelled,
	"cancelada":        model.StatusCancelled,
	"reversed":         model.StatusCancelled,
	"estornado":        model.StatusCancelled,
	"estornada":        model.StatusCancelled,
}

// NormalizeStatus maps a provider status onto the canonical set. Unknown or empty
// values become StatusUnknown.
func NormalizeStatus(s string) model.Status {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return model.StatusUnknown
	}
	if st, ok := statusVocabulary[key]; ok {
		return st
	}
	// Providers sometimes already send the canonical upper-case form
	switch st := model.Status(strings.ToUpper(key)); st {
	case model.StatusSuccess, model.StatusPending, model.StatusProcessing,
		model.StatusFailed, model.StatusCancelled:
		return st
	}
	return model.StatusUnknown
}
