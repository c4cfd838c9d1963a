// Package history writes completed turns to Postgres so past exchanges can
// be replayed through the chat history endpoint. Failures here never fail
// the turn; the caller logs and moves on.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	commonerrors "finchat/internal/common/errors"
	"finchat/internal/common/logger"
	"finchat/internal/models"
)

// TurnRecord is one persisted exchange.
type TurnRecord struct {
	TurnID          string    `json:"turnId"`
	ConversationID  string    `json:"conversationId"`
	UserMessage     string    `json:"userMessage"`
	Intent          string    `json:"intent"`
	Confidence      float64   `json:"confidence"`
	State           string    `json:"state"`
	Response        string    `json:"response"`
	DataUnavailable bool      `json:"dataUnavailable"`
	Entities        []byte    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

const insertTurnSQL = `
	INSERT INTO chat_turns
		(turn_id, conversation_id, user_message, intent, confidence, state, response, data_unavailable, entities, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const recentTurnsSQL = `
	SELECT turn_id, conversation_id, user_message, intent, confidence, state, response, data_unavailable, created_at
	FROM chat_turns
	WHERE conversation_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

// Store persists turns. It expects the chat_turns table to exist.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "history-store"}),
	}
}

// RecordTurn inserts one completed exchange.
func (s *Store) RecordTurn(ctx context.Context, utterance models.Utterance, result *models.TurnResult) error {
	entities, err := json.Marshal(result.Entities)
	if err != nil {
		return commonerrors.NewHistoryWriteFailedError(err)
	}

	ts := utterance.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, insertTurnSQL,
		result.TurnID,
		utterance.ConversationID,
		utterance.Text,
		string(result.Intent),
		result.Confidence,
		string(result.State),
		result.Response,
		result.DataUnavailable,
		entities,
		ts,
	)
	if err != nil {
		return commonerrors.NewHistoryWriteFailedError(err)
	}

	s.logger.Debug("turn recorded", map[string]interface{}{
		"conversationId": utterance.ConversationID,
		"turnId":         result.TurnID,
	})
	return nil
}

// Recent returns the latest turns for a conversation, newest first.
func (s *Store) Recent(ctx context.Context, conversationID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, recentTurnsSQL, conversationID, limit)
	if err != nil {
		return nil, commonerrors.NewHistoryReadFailedError(err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var r TurnRecord
		if err := rows.Scan(
			&r.TurnID, &r.ConversationID, &r.UserMessage, &r.Intent,
			&r.Confidence, &r.State, &r.Response, &r.DataUnavailable, &r.CreatedAt,
		); err != nil {
			return nil, commonerrors.NewHistoryReadFailedError(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewHistoryReadFailedError(err)
	}
	return records, nil
}
