package api

import (
	"github.com/starford/vaultjoin/internal/joinservice"
	"github.com/starford/vaultjoin/internal/journal"
)

// NoteDetail is the parsed note response type (aliased from the domain layer).
type NoteDetail = joinservice.NoteDetail

// IndexEntry is one key of a strategy index (aliased from the domain layer).
type IndexEntry = joinservice.IndexEntry

// JoinRequest is the request body for a single join (aliased from the domain layer).
type JoinRequest = joinservice.JoinRequest

// JoinResult reports one completed write (aliased from the domain layer).
type JoinResult = joinservice.JoinResult

// StrategyListResponse lists the configured strategy names.
type StrategyListResponse struct {
	Strategies []string `json:"strategies" example:"person,project" validate:"required"`
}

// IndexResponse wraps the notes found by a strategy.
type IndexResponse struct {
	Strategy string       `json:"strategy" example:"person" validate:"required"`
	Entries  []IndexEntry `json:"entries" validate:"required"`
}

// DuplicatesResponse lists keys carried by more than one note.
type DuplicatesResponse struct {
	Strategy   string              `json:"strategy" example:"person" validate:"required"`
	Duplicates map[string][]string `json:"duplicates" validate:"required"`
}

// BatchJoinRequest is the request body for joining several objects at once.
type BatchJoinRequest struct {
	Joins []JoinRequest `json:"joins" validate:"required"`
}

// BatchJoinResponse reports the writes of a batch. When the batch stopped
// early, Error names the failing entry and Results holds the writes before it.
type BatchJoinResponse struct {
	Results []JoinResult `json:"results" validate:"required"`
	Error   string       `json:"error,omitempty"`
}

// JournalResponse wraps journal entries, newest first.
type JournalResponse struct {
	Entries []journal.Entry `json:"entries" validate:"required"`
}
