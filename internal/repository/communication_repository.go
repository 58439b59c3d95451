package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
)

// CommunicationRepo stores threaded messages between users and the
// appointment sub-workflow carried on appointment_request messages.
// Replies and their parent status update run in one transaction.
type CommunicationRepo struct {
	db *sql.DB
}

// NewCommunicationRepo returns a new CommunicationRepo bound to the given database.
func NewCommunicationRepo(db *sql.DB) *CommunicationRepo { return &CommunicationRepo{db: db} }

const messageCols = `id, sender_id, recipient_id, expo_id, subject, body, message_type, priority,
	status, parent_message_id, related_application_id, related_booth_id, read_at,
	appointment_at, appointment_place, appointment_status, created_at, updated_at`

func scanMessage(scan func(dest ...interface{}) error) (model.Message, error) {
	var m model.Message
	var expoID, parentID, appID, boothID sql.NullInt64
	var readAt, apptAt sql.NullTime
	var apptPlace, apptStatus sql.NullString
	err := scan(
		&m.ID, &m.SenderID, &m.RecipientID, &expoID, &m.Subject, &m.Body, &m.MessageType, &m.Priority,
		&m.Status, &parentID, &appID, &boothID, &readAt,
		&apptAt, &apptPlace, &apptStatus, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}
	if expoID.Valid {
		v := uint64(expoID.Int64)
		m.ExpoID = &v
	}
	if parentID.Valid {
		v := uint64(parentID.Int64)
		m.ParentMessageID = &v
	}
	if appID.Valid {
		v := uint64(appID.Int64)
		m.RelatedApplicationID = &v
	}
	if boothID.Valid {
		v := uint64(boothID.Int64)
		m.RelatedBoothID = &v
	}
	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}
	if apptAt.Valid {
		t := apptAt.Time
		m.AppointmentAt = &t
	}
	if apptPlace.Valid {
		p := apptPlace.String
		m.AppointmentPlace = &p
	}
	if apptStatus.Valid {
		s := apptStatus.String
		m.AppointmentStatus = &s
	}
	return m, nil
}

// Create inserts a new top-level message.  New messages start in the
// delivered state; appointment_request messages also start their
// appointment block in pending.
func (r *CommunicationRepo) Create(ctx context.Context, m *model.Message) error {
	if m.MessageType == model.MessageTypeAppointmentRequest {
		pending := model.AppointmentStatusPending
		m.AppointmentStatus = &pending
	}
	const q = `INSERT INTO messages (sender_id, recipient_id, expo_id, subject, body, message_type,
		priority, status, parent_message_id, related_application_id, related_booth_id,
		appointment_at, appointment_place, appointment_status)
		VALUES (?,?,?,?,?,?,?,'delivered',?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		m.SenderID, m.RecipientID, m.ExpoID, m.Subject, m.Body, m.MessageType,
		m.Priority, m.ParentMessageID, m.RelatedApplicationID, m.RelatedBoothID,
		m.AppointmentAt, m.AppointmentPlace, m.AppointmentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.Status = model.MessageStatusDelivered
	return nil
}

// GetByID returns a single message.  Visibility is the handler's call;
// the repository only loads the row.
func (r *CommunicationRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageCols+` FROM messages WHERE id = ?`, id)
	return scanMessage(row.Scan)
}

// MessageFilter narrows list results.  Box selects "inbox" or "sent";
// empty strings mean "no filter".
type MessageFilter struct {
	Box         string
	MessageType string
	Status      string
	Limit       int
	Offset      int
}

// ListForUser returns the messages visible to a user, newest first.
// Inbox shows received non-archived messages; sent shows authored ones.
func (r *CommunicationRepo) ListForUser(ctx context.Context, userID uint64, f MessageFilter) ([]model.Message, error) {
	q := `SELECT ` + messageCols + ` FROM messages WHERE `
	args := []interface{}{}
	if f.Box == "sent" {
		q += `sender_id = ?`
		args = append(args, userID)
	} else {
		q += `recipient_id = ? AND status <> 'archived'`
		args = append(args, userID)
	}
	if f.MessageType != "" {
		q += ` AND message_type = ?`
		args = append(args, f.MessageType)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListThread returns a root message and all replies beneath it in
// chronological order.  ErrForbidden is returned when the caller is not
// a participant of the root.
func (r *CommunicationRepo) ListThread(ctx context.Context, rootID, userID uint64) ([]model.Message, error) {
	root, err := r.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if !root.ParticipantOf(userID) {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageCols+` FROM messages WHERE id = ? OR parent_message_id = ? ORDER BY created_at`,
		rootID, rootID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplyTx inserts a reply and flips the parent to replied within one
// transaction.  The reply inherits the parent's expo, type and related
// references so the thread stays attached to the same workflow objects.
func (r *CommunicationRepo) ReplyTx(ctx context.Context, tx *sql.Tx, parent *model.Message, reply *model.Message) error {
	reply.RecipientID = model.ReplyRecipient(parent, reply.SenderID)
	reply.ExpoID = parent.ExpoID
	reply.MessageType = parent.MessageType
	reply.RelatedApplicationID = parent.RelatedApplicationID
	reply.RelatedBoothID = parent.RelatedBoothID
	reply.ParentMessageID = &parent.ID
	const q = `INSERT INTO messages (sender_id, recipient_id, expo_id, subject, body, message_type,
		priority, status, parent_message_id, related_application_id, related_booth_id)
		VALUES (?,?,?,?,?,?,?,'delivered',?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		reply.SenderID, reply.RecipientID, reply.ExpoID, reply.Subject, reply.Body,
		reply.MessageType, reply.Priority, reply.ParentMessageID,
		reply.RelatedApplicationID, reply.RelatedBoothID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reply.ID = uint64(id)
	reply.Status = model.MessageStatusDelivered
	_, err = tx.ExecContext(ctx,
		`UPDATE messages SET status='replied' WHERE id=?`, parent.ID)
	return err
}

// MarkRead flips a delivered message to read on behalf of its recipient.
// Views by the sender or repeat views leave the row untouched.
func (r *CommunicationRepo) MarkRead(ctx context.Context, messageID, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status='read', read_at=? WHERE id=? AND recipient_id=? AND status='delivered'`,
		time.Now().UTC(), messageID, userID)
	return err
}

// MarkAllRead marks every delivered message in the user's inbox as read
// and returns how many rows changed.
func (r *CommunicationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status='read', read_at=? WHERE recipient_id=? AND status='delivered'`,
		time.Now().UTC(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkReadByIDs marks the given messages read, scoped to rows where the
// caller is the recipient.  IDs owned by someone else are skipped, not
// rejected.  Returns how many rows changed.
func (r *CommunicationRepo) MarkReadByIDs(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `UPDATE messages SET status='read', read_at=? WHERE recipient_id=? AND status='delivered' AND id IN (`
	args := []interface{}{time.Now().UTC(), userID}
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Conversation returns the full two-way history between the caller and
// another user within one expo, oldest first.  Delivered messages sent
// by the counterparty are flipped to read as a side effect.
func (r *CommunicationRepo) Conversation(ctx context.Context, userID, otherID, expoID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE expo_id = ? AND ((sender_id=? AND recipient_id=?) OR (sender_id=? AND recipient_id=?))
		 ORDER BY created_at`,
		expoID, userID, otherID, otherID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE messages SET status='read', read_at=?
		 WHERE expo_id=? AND sender_id=? AND recipient_id=? AND status='delivered'`,
		time.Now().UTC(), expoID, otherID, userID)
	return out, err
}

// ListByBooth returns the caller's messages that reference a booth,
// newest first.  Only rows where the caller participates are visible.
func (r *CommunicationRepo) ListByBooth(ctx context.Context, userID, boothID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE related_booth_id = ? AND (sender_id=? OR recipient_id=?)
		 ORDER BY created_at DESC`,
		boothID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListAppointmentRequests returns pending appointment requests awaiting
// the caller's decision, oldest first so the backlog drains in order.
func (r *CommunicationRepo) ListAppointmentRequests(ctx context.Context, userID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageCols+` FROM messages
		 WHERE recipient_id = ? AND message_type = ? AND appointment_status = ?
		 ORDER BY created_at`,
		userID, model.MessageTypeAppointmentRequest, model.AppointmentStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UnreadCount returns how many delivered messages await the user.
func (r *CommunicationRepo) UnreadCount(ctx context.Context, userID uint64) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id=? AND status='delivered'`, userID).Scan(&n)
	return n, err
}

// UpdateAppointment records the recipient's decision on an
// appointment_request message.  Only the recipient of the request may
// decide; anyone else gets ErrForbidden.  Messages of other types return
// ErrInvalidState.
func (r *CommunicationRepo) UpdateAppointment(ctx context.Context, messageID, userID uint64, status string) error {
	m, err := r.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.MessageType != model.MessageTypeAppointmentRequest {
		return ErrInvalidState
	}
	if m.RecipientID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE messages SET appointment_status=? WHERE id=?`, status, messageID)
	return err
}

// Archive hides a message for both sides.  Either participant may
// archive; others get ErrForbidden.
func (r *CommunicationRepo) Archive(ctx context.Context, messageID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status='archived' WHERE id=? AND (sender_id=? OR recipient_id=?)`,
		messageID, userID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM messages WHERE id=?`, messageID).Scan(&exists); err != nil {
			return err
		}
		return ErrForbidden
	}
	return nil
}
