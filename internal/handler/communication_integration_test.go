package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
	"github.com/iliyamo/expo-management/internal/testutil"
)

func TestSendMessage_UnknownExpoRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)

	sender := testutil.InsertUser(t, ctx, db, "sender@test.local", model.RoleExhibitor)
	recipient := testutil.InsertUser(t, ctx, db, "recipient@test.local", model.RoleOrganizer)

	h := &CommunicationHandler{
		DB:       db,
		Messages: repository.NewCommunicationRepo(db),
		Users:    repository.NewUserRepo(db),
		ExpoRepo: repository.NewExpoRepo(db),
	}

	body := fmt.Sprintf(
		`{"recipient_id":%d,"expo_id":999999,"subject":"hi","body":"hello","message_type":"general"}`,
		recipient)
	c, rec := jsonRequest(http.MethodPost, "/v1/messages", body)
	c.Set("user_id", sender)

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown expo", rec.Code)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("messages = %d, want none persisted", n)
	}
}
