package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/giftify-next/internal/constants"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"
	"github.com/giftify-next/internal/repository"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type giftRequestServiceFixture struct {
	svc       *GiftRequestService
	settings  *SettingService
	userRepo  repository.UserRepository
	fan       *models.User
	creator   *models.User
	logistics *models.User
}

func setupGiftRequestServiceTest(t *testing.T) *giftRequestServiceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.GiftRequest{}); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	giftRepo := repository.NewGiftRequestRepository(db)
	settings := NewSettingService(newMockSettingRepo())
	svc := NewGiftRequestService(giftRepo, userRepo, settings, nil)

	fixture := &giftRequestServiceFixture{
		svc:      svc,
		settings: settings,
		userRepo: userRepo,
		fan: &models.User{
			Email:       "fan@example.com",
			Role:        constants.RoleFan,
			DisplayName: "Fan One",
			Status:      constants.UserStatusActive,
		},
		creator: &models.User{
			Email:       "creator@example.com",
			Role:        constants.RoleCreator,
			DisplayName: "Creator One",
			Status:      constants.UserStatusActive,
			Verified:    true,
		},
		logistics: &models.User{
			Email:       "hub@example.com",
			Role:        constants.RoleLogistics,
			DisplayName: "Hub",
			Status:      constants.UserStatusActive,
		},
	}
	for _, user := range []*models.User{fixture.fan, fixture.creator, fixture.logistics} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user %s failed: %v", user.Email, err)
		}
	}
	return fixture
}

func (f *giftRequestServiceFixture) fanActor() Actor {
	return Actor{ID: f.fan.ID, Role: constants.RoleFan}
}

func (f *giftRequestServiceFixture) creatorActor() Actor {
	return Actor{ID: f.creator.ID, Role: constants.RoleCreator}
}

func (f *giftRequestServiceFixture) logisticsActor() Actor {
	return Actor{ID: f.logistics.ID, Role: constants.RoleLogistics}
}

func (f *giftRequestServiceFixture) createPending(t *testing.T) *models.GiftRequest {
	t.Helper()
	request, err := f.svc.Create(context.Background(), f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item: GiftItemDetailsInput{
			Name:        "Vinyl Record",
			Description: "limited pressing",
			ApproxValue: "35.00",
			Category:    "music",
		},
	})
	if err != nil {
		t.Fatalf("create gift request failed: %v", err)
	}
	return request
}

func submitAddressInput() SubmitPickupAddressInput {
	return SubmitPickupAddressInput{
		Address: &PickupAddressInput{
			Street:  "1 Main St",
			City:    "Portland",
			State:   "OR",
			Zip:     "97201",
			Country: "US",
		},
		ContactPhone: "+1-503-555-0101",
	}
}

func TestGiftRequestLifecycleHappyPath(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	request := f.createPending(t)
	if request.Status != constants.GiftRequestStatusPending {
		t.Fatalf("new request status want pending got %s", request.Status)
	}
	if !request.Timeline.Stamped(constants.TimelineEventCreated) {
		t.Fatal("created_at must be stamped on creation")
	}
	if request.ItemDetails.ApproxValue.StringFixed(2) != "35.00" {
		t.Fatalf("approx value want 35.00 got %s", request.ItemDetails.ApproxValue.StringFixed(2))
	}

	accepted, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept")
	if err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}
	if accepted.Status != constants.GiftRequestStatusAcceptedNeedAddress {
		t.Fatalf("status want accepted_need_address got %s", accepted.Status)
	}
	if !accepted.Timeline.Stamped(constants.TimelineEventAccepted) {
		t.Fatal("accepted_at must be stamped")
	}

	ready, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, submitAddressInput())
	if err != nil {
		t.Fatalf("submit pickup address failed: %v", err)
	}
	if ready.Status != constants.GiftRequestStatusReadyForPickup {
		t.Fatalf("status want ready_for_pickup got %s", ready.Status)
	}
	if ready.PickupDetails == nil || ready.PickupDetails.Address.City != "Portland" {
		t.Fatalf("pickup details not persisted: %+v", ready.PickupDetails)
	}

	picked, err := f.svc.MarkPickedUp(ctx, f.logisticsActor(), request.RequestNo, MarkPickedUpInput{
		Weight:         2.4,
		TrackingNumber: " HUB-001 ",
	})
	if err != nil {
		t.Fatalf("mark picked up failed: %v", err)
	}
	if picked.Status != constants.GiftRequestStatusPickedUp {
		t.Fatalf("status want picked_up got %s", picked.Status)
	}
	if picked.Logistics.Weight != 2.4 || picked.Logistics.TrackingNumber != "HUB-001" {
		t.Fatalf("logistics not persisted: %+v", picked.Logistics)
	}

	delivered, err := f.svc.MarkDelivered(ctx, f.logisticsActor(), request.RequestNo)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if delivered.Status != constants.GiftRequestStatusDelivered {
		t.Fatalf("status want delivered got %s", delivered.Status)
	}
	for _, event := range []string{
		constants.TimelineEventCreated,
		constants.TimelineEventAccepted,
		constants.TimelineEventReadyForPickup,
		constants.TimelineEventPickedUp,
		constants.TimelineEventDelivered,
	} {
		if !delivered.Timeline.Stamped(event) {
			t.Fatalf("timeline event %s missing", event)
		}
	}
}

func TestGiftRequestCreateRoleChecks(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.creatorActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item:      GiftItemDetailsInput{Name: "Mug"},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("creator as sender want ErrForbidden got %v", err)
	}

	_, err = f.svc.Create(ctx, f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.fan.ID,
		Item:      GiftItemDetailsInput{Name: "Mug"},
	})
	if !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("fan as recipient want ErrCreatorNotFound got %v", err)
	}
}

func TestGiftRequestCreateMissingNameValidation(t *testing.T) {
	f := setupGiftRequestServiceTest(t)

	_, err := f.svc.Create(context.Background(), f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item:      GiftItemDetailsInput{Name: "   "},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error got %v", err)
	}
	if field := ValidationField(err); field != "item_details.name" {
		t.Fatalf("validation field want item_details.name got %q", field)
	}
}

func TestGiftRequestCreatePolicyDenied(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	if _, err := f.settings.UpdateGiftingGlobalSetting(GiftingGlobalSetting{
		PickupsPaused:  true,
		MaxGiftsPerFan: 10,
	}); err != nil {
		t.Fatalf("update gifting setting failed: %v", err)
	}
	if err := f.settings.UpsertCreatorOverride(f.creator.ID, CreatorOverride{DisableGifting: true}); err != nil {
		t.Fatalf("upsert override failed: %v", err)
	}

	_, err := f.svc.Create(ctx, f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item:      GiftItemDetailsInput{Name: "Mug"},
	})
	if !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("want policy denied got %v", err)
	}
	if reason := PolicyDenyReason(err); reason != constants.DenyReasonPickupsPaused {
		t.Fatalf("deny reason want pickups_paused got %q", reason)
	}

	if _, err := f.settings.UpdateGiftingGlobalSetting(GiftingGlobalSetting{MaxGiftsPerFan: 10}); err != nil {
		t.Fatalf("update gifting setting failed: %v", err)
	}
	_, err = f.svc.Create(ctx, f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item:      GiftItemDetailsInput{Name: "Mug"},
	})
	if reason := PolicyDenyReason(err); reason != constants.DenyReasonGiftingDisabled {
		t.Fatalf("deny reason want creator_gifting_disabled got %q", reason)
	}
}

func TestGiftRequestCreateDailyLimit(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	if _, err := f.settings.UpdateGiftingGlobalSetting(GiftingGlobalSetting{MaxGiftsPerFan: 1}); err != nil {
		t.Fatalf("update gifting setting failed: %v", err)
	}

	f.createPending(t)

	_, err := f.svc.Create(ctx, f.fanActor(), CreateGiftRequestInput{
		CreatorID: f.creator.ID,
		Item:      GiftItemDetailsInput{Name: "Second Gift"},
	})
	if !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("want policy denied got %v", err)
	}
	if reason := PolicyDenyReason(err); reason != constants.DenyReasonDailyLimit {
		t.Fatalf("deny reason want daily_limit_reached got %q", reason)
	}
}

func TestRespondValidation(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)

	_, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "maybe")
	if field := ValidationField(err); field != "decision" {
		t.Fatalf("validation field want decision got %q (err=%v)", field, err)
	}

	otherCreator := Actor{ID: f.creator.ID + 100, Role: constants.RoleCreator}
	if _, err := f.svc.Respond(ctx, otherCreator, request.RequestNo, "accept"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign creator want ErrForbidden got %v", err)
	}

	if _, err := f.svc.Respond(ctx, f.fanActor(), request.RequestNo, "accept"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("fan respond want ErrForbidden got %v", err)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)

	rejected, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "reject")
	if err != nil {
		t.Fatalf("respond reject failed: %v", err)
	}
	if rejected.Status != constants.GiftRequestStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}

	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("accept after reject want ErrInvalidTransition got %v", err)
	}
	if _, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, submitAddressInput()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("address after reject want ErrInvalidTransition got %v", err)
	}
}

func TestSubmitPickupAddressValidation(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)
	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}

	input := submitAddressInput()
	input.Address.City = "  "
	_, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, input)
	if field := ValidationField(err); field != "pickup_details.address.city" {
		t.Fatalf("validation field want pickup_details.address.city got %q (err=%v)", field, err)
	}

	input = submitAddressInput()
	input.ContactPhone = ""
	_, err = f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, input)
	if field := ValidationField(err); field != "pickup_details.contact_phone" {
		t.Fatalf("validation field want pickup_details.contact_phone got %q (err=%v)", field, err)
	}
}

func TestSubmitPickupAddressDefaultFallback(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	fanSettings := map[string]interface{}{
		"default_pickup_address": map[string]interface{}{
			"street":  "9 Default Ave",
			"city":    "Austin",
			"state":   "TX",
			"zip":     "73301",
			"country": "US",
		},
	}
	f.fan.FanSettingsJSON = models.JSON(fanSettings)
	if err := f.userRepo.Update(f.fan); err != nil {
		t.Fatalf("update fan settings failed: %v", err)
	}

	request := f.createPending(t)
	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}

	ready, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, SubmitPickupAddressInput{
		ContactPhone: "+1-512-555-0100",
	})
	if err != nil {
		t.Fatalf("submit with default address failed: %v", err)
	}
	if ready.PickupDetails == nil || ready.PickupDetails.Address.Street != "9 Default Ave" {
		t.Fatalf("default address not applied: %+v", ready.PickupDetails)
	}
}

func TestUpdateItemDetailsFrozenAfterAccept(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)

	updated, err := f.svc.UpdateItemDetails(f.fanActor(), request.RequestNo, GiftItemDetailsInput{
		Name:        "Cassette Tape",
		ApproxValue: -12.5,
	})
	if err != nil {
		t.Fatalf("update pending item failed: %v", err)
	}
	if updated.ItemDetails.Name != "Cassette Tape" {
		t.Fatalf("item name want Cassette Tape got %s", updated.ItemDetails.Name)
	}
	if updated.ItemDetails.ApproxValue.StringFixed(2) != "0.00" {
		t.Fatalf("negative approx value must coerce to 0, got %s", updated.ItemDetails.ApproxValue.StringFixed(2))
	}

	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}

	_, err = f.svc.UpdateItemDetails(f.fanActor(), request.RequestNo, GiftItemDetailsInput{Name: "Too Late"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("update after accept want ErrInvalidTransition got %v", err)
	}
}

func TestTransitionSkipValidation(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)

	// 待处理请求不能直接进入履约链路
	if _, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, submitAddressInput()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("address on pending want ErrInvalidTransition got %v", err)
	}
	if _, err := f.svc.MarkPickedUp(ctx, f.logisticsActor(), request.RequestNo, MarkPickedUpInput{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pickup on pending want ErrInvalidTransition got %v", err)
	}
	if _, err := f.svc.MarkDelivered(ctx, f.logisticsActor(), request.RequestNo); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("deliver on pending want ErrInvalidTransition got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()

	f.createPending(t)
	second := f.createPending(t)
	if _, err := f.svc.Respond(ctx, f.creatorActor(), second.RequestNo, "accept"); err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}
	if _, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), second.RequestNo, submitAddressInput()); err != nil {
		t.Fatalf("submit address failed: %v", err)
	}

	views, total, err := f.svc.List(f.fanActor(), ListGiftRequestInput{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("fan list failed: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("fan list want 2 got total=%d len=%d", total, len(views))
	}

	// 物流默认只看到进入履约链路的请求
	views, total, err = f.svc.List(f.logisticsActor(), ListGiftRequestInput{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("logistics list failed: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("logistics list want 1 got total=%d len=%d", total, len(views))
	}

	if _, _, err := f.svc.List(Actor{ID: 1, Role: "ghost"}, ListGiftRequestInput{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unknown role want ErrForbidden got %v", err)
	}
}

func TestGetProjectionHidesFieldsByRole(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)
	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); err != nil {
		t.Fatalf("respond accept failed: %v", err)
	}
	if _, err := f.svc.SubmitPickupAddress(ctx, f.fanActor(), request.RequestNo, submitAddressInput()); err != nil {
		t.Fatalf("submit address failed: %v", err)
	}

	creatorView, err := f.svc.Get(f.creatorActor(), request.RequestNo)
	if err != nil {
		t.Fatalf("creator get failed: %v", err)
	}
	raw, err := json.Marshal(creatorView)
	if err != nil {
		t.Fatalf("marshal creator view failed: %v", err)
	}
	var creatorPayload map[string]interface{}
	if err := json.Unmarshal(raw, &creatorPayload); err != nil {
		t.Fatalf("unmarshal creator view failed: %v", err)
	}
	if _, exists := creatorPayload["pickup_details"]; exists {
		t.Fatal("creator view must not expose pickup_details")
	}

	logisticsView, err := f.svc.Get(f.logisticsActor(), request.RequestNo)
	if err != nil {
		t.Fatalf("logistics get failed: %v", err)
	}
	raw, err = json.Marshal(logisticsView)
	if err != nil {
		t.Fatalf("marshal logistics view failed: %v", err)
	}
	var logisticsPayload map[string]interface{}
	if err := json.Unmarshal(raw, &logisticsPayload); err != nil {
		t.Fatalf("unmarshal logistics view failed: %v", err)
	}
	if _, exists := logisticsPayload["fan_id"]; exists {
		t.Fatal("logistics view must not expose fan_id")
	}
	if _, exists := logisticsPayload["fan_name"]; exists {
		t.Fatal("logistics view must not expose fan_name")
	}
	if _, exists := logisticsPayload["pickup_details"]; !exists {
		t.Fatal("logistics view must expose pickup_details")
	}
}

func TestAdminUpdateAndDelete(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	request := f.createPending(t)
	admin := Actor{ID: 1, Role: constants.RoleAdmin}

	toStatus := constants.GiftRequestStatusDelivered
	updated, err := f.svc.AdminUpdate(admin, request.RequestNo, AdminUpdateGiftRequestInput{Status: &toStatus})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Status != constants.GiftRequestStatusDelivered {
		t.Fatalf("admin override status want delivered got %s", updated.Status)
	}
	if !updated.Timeline.Stamped(constants.TimelineEventDelivered) {
		t.Fatal("admin status override must stamp timeline")
	}

	bad := "shipped"
	if _, err := f.svc.AdminUpdate(admin, request.RequestNo, AdminUpdateGiftRequestInput{Status: &bad}); ValidationField(err) != "status" {
		t.Fatalf("bad status want validation error got %v", err)
	}

	if err := f.svc.AdminDelete(admin, request.RequestNo); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := f.svc.Get(admin, request.RequestNo); !errors.Is(err, ErrGiftRequestNotFound) {
		t.Fatalf("deleted request want ErrGiftRequestNotFound got %v", err)
	}

	if err := f.svc.AdminDelete(f.fanActor(), "whatever"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("fan admin delete want ErrForbidden got %v", err)
	}
}

func TestCoerceApproxValue(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "nil", in: nil, want: "0.00"},
		{name: "float", in: 12.5, want: "12.50"},
		{name: "string", in: "7.25", want: "7.25"},
		{name: "garbage string", in: "abc", want: "0.00"},
		{name: "negative", in: -3, want: "0.00"},
		{name: "bool", in: true, want: "0.00"},
		{name: "json number", in: json.Number("99.90"), want: "99.90"},
	}
	for _, item := range cases {
		got := coerceApproxValue(item.in).StringFixed(2)
		if got != item.want {
			t.Fatalf("%s: want %s got %s", item.name, item.want, got)
		}
	}
}

func TestTransitionConflictLogsWarning(t *testing.T) {
	f := setupGiftRequestServiceTest(t)
	ctx := context.Background()
	request := f.createPending(t)

	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	prev := logger.L
	logger.L = zap.New(core)
	defer func() { logger.L = prev }()

	if _, err := f.svc.Respond(ctx, f.creatorActor(), request.RequestNo, "accept"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}

	entries := logs.FilterMessage("gift_request_transition_conflict").All()
	if len(entries) == 0 {
		t.Fatal("expected gift_request_transition_conflict warn log")
	}
	fields := entries[0].ContextMap()
	if fields["request_no"] != request.RequestNo {
		t.Fatalf("want request_no %s in log, got %v", request.RequestNo, fields["request_no"])
	}
	if fields["actual_status"] != constants.GiftRequestStatusAcceptedNeedAddress {
		t.Fatalf("want actual_status %s in log, got %v", constants.GiftRequestStatusAcceptedNeedAddress, fields["actual_status"])
	}
}
