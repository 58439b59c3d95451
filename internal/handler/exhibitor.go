package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/queue"
	"github.com/iliyamo/expo-management/internal/repository"
	queue_publisher "github.com/iliyamo/expo-management/internal/service"
)

// ExhibitorHandler serves the exhibitor-side surface: the company
// profile with its products and documents, expo applications and direct
// booth reservations.
type ExhibitorHandler struct {
	DB           *sql.DB
	Exhibitors   *repository.ExhibitorRepo
	Applications *repository.ApplicationRepo
	ExpoRepo     *repository.ExpoRepo
	Booths       *repository.BoothRepo
}

type profileUpsertReq struct {
	CompanyName  string  `json:"company_name" validate:"required,min=2,max=255"`
	Description  *string `json:"description"`
	Industry     *string `json:"industry"`
	Website      *string `json:"website" validate:"omitempty,url"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	ContactPhone *string `json:"contact_phone"`
	CompanySize  *string `json:"company_size"`
	FoundedYear  *uint16 `json:"founded_year"`
}

func (req *profileUpsertReq) toModel(userID uint64) model.Exhibitor {
	return model.Exhibitor{
		UserID:       userID,
		CompanyName:  req.CompanyName,
		Description:  req.Description,
		Industry:     req.Industry,
		Website:      req.Website,
		LogoURL:      req.LogoURL,
		ContactPhone: req.ContactPhone,
		CompanySize:  req.CompanySize,
		FoundedYear:  req.FoundedYear,
	}
}

// CreateProfile registers the caller's company profile. One per user.
func (h *ExhibitorHandler) CreateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req profileUpsertReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.CompanySize != nil && !model.ValidCompanySize(*req.CompanySize) {
		return fail(c, http.StatusBadRequest, "invalid company size")
	}
	ex := req.toModel(uid)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Exhibitors.Create(ctx, &ex); err != nil {
		if err == repository.ErrProfileExists {
			return fail(c, http.StatusConflict, "profile already exists")
		}
		return fail(c, http.StatusInternalServerError, "create profile failed")
	}
	return ok(c, http.StatusCreated, "profile created", ex)
}

// MyProfile returns the caller's profile with products and documents.
func (h *ExhibitorHandler) MyProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "profile", ex)
}

// UpdateProfile rewrites the caller's company details.
func (h *ExhibitorHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req profileUpsertReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.CompanySize != nil && !model.ValidCompanySize(*req.CompanySize) {
		return fail(c, http.StatusBadRequest, "invalid company size")
	}
	ex := req.toModel(uid)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Exhibitors.Update(ctx, &ex); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "update profile failed")
	}
	return ok(c, http.StatusOK, "profile updated", ex)
}

type productReq struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// AddProduct appends a catalogue entry to the caller's profile.
func (h *ExhibitorHandler) AddProduct(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req productReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	p := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if err := h.Exhibitors.AddProduct(ctx, ex.ID, &p); err != nil {
		return fail(c, http.StatusInternalServerError, "add product failed")
	}
	return ok(c, http.StatusCreated, "product added", p)
}

// DeleteProduct removes one of the caller's catalogue entries.
func (h *ExhibitorHandler) DeleteProduct(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	productID := c.Param("product_id")
	if productID == "" {
		return fail(c, http.StatusBadRequest, "invalid product id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Exhibitors.DeleteProduct(ctx, ex.ID, productID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "product not found")
		}
		return fail(c, http.StatusInternalServerError, "delete product failed")
	}
	return ok(c, http.StatusOK, "product deleted", nil)
}

type documentReq struct {
	Name    string  `json:"name" validate:"required,min=1,max=255"`
	URL     string  `json:"url" validate:"required,url"`
	DocType *string `json:"doc_type"`
}

// AddDocument attaches a supporting document to the caller's profile.
func (h *ExhibitorHandler) AddDocument(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req documentReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	d := model.Document{Name: req.Name, URL: req.URL, DocType: req.DocType}
	if err := h.Exhibitors.AddDocument(ctx, ex.ID, &d); err != nil {
		return fail(c, http.StatusInternalServerError, "add document failed")
	}
	return ok(c, http.StatusCreated, "document added", d)
}

// DeleteDocument removes a document from the caller's profile.
func (h *ExhibitorHandler) DeleteDocument(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	documentID := c.Param("document_id")
	if documentID == "" {
		return fail(c, http.StatusBadRequest, "invalid document id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if err := h.Exhibitors.DeleteDocument(ctx, ex.ID, documentID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "document not found")
		}
		return fail(c, http.StatusInternalServerError, "delete document failed")
	}
	return ok(c, http.StatusOK, "document deleted", nil)
}

type applyReq struct {
	BoothPreference     *string `json:"booth_preference"`
	StaffCount          uint32  `json:"staff_count" validate:"required,min=1,max=100"`
	SpecialRequirements *string `json:"special_requirements"`
}

// Apply submits an application to an expo. The caller needs a company
// profile, and the expo must be published and still taking applications.
func (h *ExhibitorHandler) Apply(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	expoID, okID := pathID(c, "id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid expo id")
	}
	var req applyReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.BoothPreference != nil && !model.ValidBoothCategory(*req.BoothPreference) {
		return fail(c, http.StatusBadRequest, "invalid booth preference")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	expo, err := h.ExpoRepo.GetByID(ctx, expoID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "expo not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !expo.AcceptingApplications() {
		return fail(c, http.StatusUnprocessableEntity, "expo is not accepting applications")
	}
	ex, err := h.Exhibitors.GetByUserID(ctx, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusUnprocessableEntity, "create a company profile before applying")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	a := model.Application{
		ExpoID:              expoID,
		ExhibitorID:         uid,
		ProfileID:           ex.ID,
		BoothPreference:     req.BoothPreference,
		StaffCount:          req.StaffCount,
		SpecialRequirements: req.SpecialRequirements,
	}
	if err := h.Applications.Create(ctx, &a); err != nil {
		if err == repository.ErrAlreadyApplied {
			return fail(c, http.StatusConflict, "already applied to this expo")
		}
		return fail(c, http.StatusInternalServerError, "apply failed")
	}
	return ok(c, http.StatusCreated, "application submitted", a)
}

// MyApplications lists the caller's applications across expos.
func (h *ExhibitorHandler) MyApplications(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	apps, err := h.Applications.ListByExhibitor(ctx, uid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, http.StatusOK, "applications", apps)
}

// GetApplication returns one of the caller's applications.
func (h *ExhibitorHandler) GetApplication(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	a, err := h.Applications.GetByID(ctx, appID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if a.ExhibitorID != uid {
		return fail(c, http.StatusForbidden, "not your application")
	}
	return ok(c, http.StatusOK, "application", a)
}

// UpdateApplication rewrites the submitted details while the
// application is still pending.
func (h *ExhibitorHandler) UpdateApplication(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	var req applyReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.BoothPreference != nil && !model.ValidBoothCategory(*req.BoothPreference) {
		return fail(c, http.StatusBadRequest, "invalid booth preference")
	}
	a := model.Application{
		ID:                  appID,
		BoothPreference:     req.BoothPreference,
		StaffCount:          req.StaffCount,
		SpecialRequirements: req.SpecialRequirements,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Applications.UpdateByApplicant(ctx, &a, uid); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "update application failed")
	}
	return ok(c, http.StatusOK, "application updated", nil)
}

// CancelApplication withdraws an undecided application.
func (h *ExhibitorHandler) CancelApplication(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	appID, okID := pathID(c, "application_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid application id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Applications.Cancel(ctx, appID, uid); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "application not found")
		}
		return repoError(c, err, "cancel application failed")
	}
	return ok(c, http.StatusOK, "application cancelled", echo.Map{"status": model.ApplicationStatusCancelled})
}

// ReserveBooth lets an exhibitor with an approved application claim an
// available booth directly. The application lock, the conditional booth
// claim and the back-reference commit together; losing the claim race
// surfaces as a 409.
func (h *ExhibitorHandler) ReserveBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	booth, err := h.Booths.GetByID(ctx, boothID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := h.Applications.GetApprovedForExpoTx(ctx, tx, booth.ExpoID, uid)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusUnprocessableEntity, "an approved application for this expo is required")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if a.AssignedBoothID != nil {
		return fail(c, http.StatusConflict, "application already holds a booth")
	}
	if err := h.Booths.ReserveTx(ctx, tx, boothID, uid); err != nil {
		if err == repository.ErrBoothUnavailable {
			return fail(c, http.StatusConflict, "booth is not available")
		}
		return fail(c, http.StatusInternalServerError, "reserve booth failed")
	}
	if err := h.Applications.SetBoothTx(ctx, tx, a.ID, &boothID); err != nil {
		return fail(c, http.StatusInternalServerError, "assign booth failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID:   uid,
		SenderID: uid,
		Event:    queue.EventBoothAssigned,
		Title:    "Booth reserved",
		Body:     fmt.Sprintf("You reserved booth %s.", booth.BoothNumber),
		ExpoID:   booth.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusOK, "booth reserved", echo.Map{"booth_id": boothID, "status": model.BoothStatusReserved})
}

// CheckInBooth marks the caller's reserved booth occupied on arrival.
// Only the exhibitor holding the reservation can check in, and only
// from the reserved state.
func (h *ExhibitorHandler) CheckInBooth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Booths.GetByID(ctx, boothID); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Booths.OccupyTx(ctx, tx, boothID, uid); err != nil {
		return repoError(c, err, "check-in failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true
	return ok(c, http.StatusOK, "booth occupied", echo.Map{"booth_id": boothID, "status": model.BoothStatusOccupied})
}

// ReleaseBoothDirect returns a reserved or occupied booth to the pool.
// The reserving exhibitor, the expo's organizer or an admin may release;
// the application back-reference is cleared in the same transaction.
func (h *ExhibitorHandler) ReleaseBoothDirect(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	boothID, okID := pathID(c, "booth_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid booth id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	booth, err := h.Booths.GetByID(ctx, boothID)
	if err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "booth not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if booth.ExhibitorID == nil {
		return fail(c, http.StatusUnprocessableEntity, "booth holds no reservation")
	}
	allowed := *booth.ExhibitorID == uid || isAdmin(c)
	if !allowed {
		e, err := h.ExpoRepo.GetByID(ctx, booth.ExpoID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "query failed")
		}
		allowed = e.OrganizerID == uid
	}
	if !allowed {
		return fail(c, http.StatusForbidden, "forbidden")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Booths.ReleaseTx(ctx, tx, boothID); err != nil {
		return fail(c, http.StatusInternalServerError, "release booth failed")
	}
	if err := h.Applications.ClearBoothRefTx(ctx, tx, boothID); err != nil {
		return fail(c, http.StatusInternalServerError, "clear booth failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	ev := queue.NotificationEvent{
		UserID:   *booth.ExhibitorID,
		SenderID: uid,
		Event:    queue.EventBoothReleased,
		Title:    "Booth released",
		Body:     fmt.Sprintf("Booth %s was released.", booth.BoothNumber),
		ExpoID:   booth.ExpoID,
	}
	go func() { _ = queue_publisher.PublishNotification(context.Background(), ev) }()

	return ok(c, http.StatusOK, "booth released", nil)
}

type verifyReq struct {
	Verified *bool `json:"verified"`
}

// VerifyProfile flips the verification flag on an exhibitor profile.
// Admin-only; verified profiles appear in the public directory.
func (h *ExhibitorHandler) VerifyProfile(c echo.Context) error {
	exhibitorID, okID := pathID(c, "exhibitor_id")
	if !okID {
		return fail(c, http.StatusBadRequest, "invalid exhibitor id")
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Exhibitors.SetVerified(ctx, exhibitorID, verified); err != nil {
		if isNoRows(err) {
			return fail(c, http.StatusNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, "update profile failed")
	}
	return ok(c, http.StatusOK, "profile updated", echo.Map{"is_verified": verified})
}
