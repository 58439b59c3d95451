package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/expo-management/internal/model"
)

// NotificationRepo stores in-app notifications written by the dispatch
// consumer.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert stores a notification row.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, sender_id, expo_id, event, title, body) VALUES (?,?,?,?,?,?)",
		n.UserID, n.SenderID, n.ExpoID, n.Event, n.Title, n.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, sender_id, expo_id, event, title, body, `read`, created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var sender, expo sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &sender, &expo, &n.Event, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if sender.Valid {
			v := uint64(sender.Int64)
			n.SenderID = &v
		}
		if expo.Valid {
			v := uint64(expo.Int64)
			n.ExpoID = &v
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one notification read, scoped to its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET `read`=1 WHERE id=? AND user_id=?", notificationID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET `read`=1 WHERE user_id=? AND `read`=0", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
