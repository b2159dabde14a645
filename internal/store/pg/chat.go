package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type chatStore Store

func (s *chatStore) CreateRoom(ctx context.Context, room *platform.ChatRoom) error {
	if len(room.UserIDs) < 2 {
		return platform.ErrInvalidInput
	}
	if room.ID == "" {
		room.ID = ids.New()
	}
	members, err := json.Marshal(room.UserIDs)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into chat_rooms (id, user_ids)
		values ($1, $2)
		returning created_at
	`, room.ID, members).Scan(&room.CreatedAt)
	return translate(err)
}

func scanRoom(row interface{ Scan(...any) error }) (*platform.ChatRoom, error) {
	var (
		room    platform.ChatRoom
		members []byte
	)
	if err := row.Scan(&room.ID, &members, &room.CreatedAt); err != nil {
		return nil, translate(err)
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &room.UserIDs); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	}
	return &room, nil
}

func (s *chatStore) FindRoom(ctx context.Context, id string) (*platform.ChatRoom, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, user_ids, created_at from chat_rooms where id = $1`, id)
	return scanRoom(row)
}

func (s *chatStore) ListRoomsByUser(ctx context.Context, userID string) ([]*platform.ChatRoom, error) {
	member, err := json.Marshal(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, user_ids, created_at
		from chat_rooms
		where user_ids @> $1
		order by created_at desc, id desc
	`, member)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.ChatRoom
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *chatStore) DeleteRoom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from chat_rooms where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return platform.ErrNotFound
	}
	return nil
}

func (s *chatStore) AppendMessage(ctx context.Context, msg *platform.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = ids.New()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into chat_messages (id, room_id, user_id, user_name, body, sent_at)
		values ($1, $2, $3, $4, $5, $6)
	`, msg.ID, msg.RoomID, msg.UserID, msg.UserName, msg.Body, msg.SentAt)
	return translate(err)
}

func (s *chatStore) History(ctx context.Context, roomID string, offset, limit int) ([]*platform.ChatMessage, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, room_id, user_id, user_name, body, sent_at
		from chat_messages
		where room_id = $1
		order by sent_at asc, id asc
		limit $2 offset $3
	`, roomID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*platform.ChatMessage{}
	for rows.Next() {
		var msg platform.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.UserName, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		out = append(out, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		// Distinguish an empty room from a missing one.
		var exists int
		if err := s.db.QueryRowContext(ctx, `select 1 from chat_rooms where id = $1`, roomID).Scan(&exists); err != nil {
			return nil, translate(err)
		}
	}
	return out, nil
}
