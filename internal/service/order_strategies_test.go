package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"starmf/internal/bse"
	"starmf/internal/models"
)

func testCredentials() *models.MemberCredentials {
	return &models.MemberCredentials{
		MemberID: "10001",
		UserID:   "1000101",
		Password: "secret",
		PassKey:  "passkey",
		ARN:      "ARN-12345",
		EUIN:     "E123456",
	}
}

func purchaseRequest() *SubmitOrderRequest {
	return &SubmitOrderRequest{
		ClientID:   "UCC001",
		OrderType:  models.OrderTypePurchase,
		SchemeCode: "SCHEME1",
		Amount:     decimal.NewFromInt(10000),
	}
}

func TestOrderEntryParamsLayout(t *testing.T) {
	req := purchaseRequest()
	req.FolioNumber = "FOLIO9"
	strategy := strategies[models.OrderTypePurchase]
	order := strategy.newOrder(req, "adv-1", "2026031500000000001")

	fields := strategy.buildParams(req, order, testCredentials(), "tok123")
	if len(fields) != bse.OrderEntryFieldCount {
		t.Fatalf("expected %d fields, got %d", bse.OrderEntryFieldCount, len(fields))
	}

	checks := map[int]string{
		0:  models.TransCodeNew,
		1:  "2026031500000000001",
		2:  "", // OrderId пуст для нового поручения
		3:  "10001",
		4:  "UCC001",
		5:  "SCHEME1",
		6:  models.BuySellPurchase,
		7:  models.BuySellTypeFresh,
		8:  "P",
		9:  "10000",
		10: "", // Qty не задан для покупки
		12: "FOLIO9",
		17: "E123456",
		18: "Y",
		22: "tok123",
	}
	for pos, want := range checks {
		if fields[pos] != want {
			t.Errorf("position %d: expected %q, got %q", pos, want, fields[pos])
		}
	}
}

func TestRedemptionParams(t *testing.T) {
	req := &SubmitOrderRequest{
		ClientID:   "UCC001",
		OrderType:  models.OrderTypeRedemption,
		SchemeCode: "SCHEME1",
		Units:      decimal.NewFromFloat(12.345),
	}
	strategy := strategies[models.OrderTypeRedemption]
	order := strategy.newOrder(req, "adv-1", "REF1")

	fields := strategy.buildParams(req, order, testCredentials(), "tok")
	if fields[6] != models.BuySellRedemption {
		t.Errorf("redemption BuySell should be R, got %q", fields[6])
	}
	if fields[9] != "" {
		t.Errorf("amount position should be empty for unit redemption, got %q", fields[9])
	}
	if fields[10] != "12.345" {
		t.Errorf("units position: expected 12.345, got %q", fields[10])
	}
}

func TestSwitchParamsLayout(t *testing.T) {
	req := &SubmitOrderRequest{
		ClientID:         "UCC001",
		OrderType:        models.OrderTypeSwitch,
		SchemeCode:       "FROM1",
		SwitchSchemeCode: "TO1",
		Amount:           decimal.NewFromInt(5000),
	}
	strategy := strategies[models.OrderTypeSwitch]
	order := strategy.newOrder(req, "adv-1", "REF1")

	fields := strategy.buildParams(req, order, testCredentials(), "tok")
	if len(fields) != bse.SwitchEntryFieldCount {
		t.Fatalf("expected %d fields, got %d", bse.SwitchEntryFieldCount, len(fields))
	}
	if fields[5] != "FROM1" || fields[6] != "TO1" {
		t.Errorf("scheme positions: got from=%q to=%q", fields[5], fields[6])
	}
	if fields[15] != "E123456" || fields[16] != "Y" {
		t.Errorf("euin positions: got %q/%q", fields[15], fields[16])
	}
	if fields[19] != "tok" {
		t.Errorf("token position: got %q", fields[19])
	}
}

func TestSpreadParamsLayout(t *testing.T) {
	req := &SubmitOrderRequest{
		ClientID:   "UCC001",
		OrderType:  models.OrderTypeSpread,
		SchemeCode: "SCHEME1",
		Amount:     decimal.NewFromInt(25000),
	}
	strategy := strategies[models.OrderTypeSpread]
	order := strategy.newOrder(req, "adv-1", "REF1")

	fields := strategy.buildParams(req, order, testCredentials(), "tok")
	if len(fields) != bse.SpreadEntryFieldCount {
		t.Fatalf("expected %d fields, got %d", bse.SpreadEntryFieldCount, len(fields))
	}
	if fields[6] != "25000" {
		t.Errorf("amount position: got %q", fields[6])
	}
	if fields[11] != "E123456" || fields[12] != "Y" {
		t.Errorf("euin positions: got %q/%q", fields[11], fields[12])
	}
	if fields[14] != "tok" {
		t.Errorf("token position: got %q", fields[14])
	}
}

func TestSIPParamsLayout(t *testing.T) {
	req := &SubmitOrderRequest{
		ClientID:   "UCC001",
		OrderType:  models.OrderTypeSIP,
		SchemeCode: "SCHEME1",
		Amount:     decimal.NewFromInt(2000),
		Frequency:  "MONTHLY",
		SIPDay:     5,
		StartDate:  "01/04/2026",
	}
	strategy := strategies[models.OrderTypeSIP]
	order := strategy.newOrder(req, "adv-1", "REF1")

	fields := strategy.buildParams(req, order, testCredentials(), "tok")
	if len(fields) != bse.SIPEntryFieldCount {
		t.Fatalf("expected %d fields, got %d", bse.SIPEntryFieldCount, len(fields))
	}
	if fields[6] != "999" {
		t.Errorf("open-ended sip should send 999 installments, got %q", fields[6])
	}
	if fields[7] != "MONTHLY" || fields[8] != "5" {
		t.Errorf("schedule positions: got %q/%q", fields[7], fields[8])
	}
	if fields[11] != "Y" {
		t.Errorf("first order flag default: got %q", fields[11])
	}

	// Токен SIP уходит отдельным элементом тела, не позицией строки
	for i, f := range fields {
		if f == "tok" {
			t.Errorf("token must not appear in sip pipe params (position %d)", i)
		}
	}
	body := strategy.buildBody(bse.BuildPipeParams(fields), "tok")
	if !strings.Contains(body, "<Password>tok</Password>") {
		t.Error("sip body should carry token in Password element")
	}
}

func TestCancelParamsLayout(t *testing.T) {
	order := &models.Order{
		ClientID:        "UCC001",
		OrderType:       models.OrderTypePurchase,
		TransCode:       models.TransCodeNew,
		BuySell:         models.BuySellPurchase,
		BuySellType:     models.BuySellTypeFresh,
		SchemeCode:      "SCHEME1",
		Amount:          decimal.NewFromInt(10000),
		DPTxnMode:       "P",
		ReferenceNumber: "REF1",
		BseOrderNumber:  "SB555",
		Status:          models.OrderStatusSubmitted,
	}

	fields := buildCancelParams(order, testCredentials(), "tok")
	if len(fields) != bse.OrderEntryFieldCount {
		t.Fatalf("expected %d fields, got %d", bse.OrderEntryFieldCount, len(fields))
	}
	if fields[0] != models.TransCodeCancel {
		t.Errorf("cancel trans code: got %q", fields[0])
	}
	if fields[2] != "SB555" {
		t.Errorf("cancel must carry exchange order number, got %q", fields[2])
	}
	if fields[18] != "N" {
		t.Errorf("cancel EUINVal must always be N, got %q", fields[18])
	}
	if fields[22] != "tok" {
		t.Errorf("token position: got %q", fields[22])
	}
}

func TestEuinFlag(t *testing.T) {
	if euinFlag("E123456") != "Y" {
		t.Error("present EUIN should give Y")
	}
	if euinFlag("") != "N" {
		t.Error("absent EUIN should give N")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		orderType string
		mutate    func(req *SubmitOrderRequest)
		wantErr   error
	}{
		{
			name:      "purchase without amount",
			orderType: models.OrderTypePurchase,
			mutate:    func(req *SubmitOrderRequest) { req.Amount = decimal.Zero },
			wantErr:   ErrAmountRequired,
		},
		{
			name:      "purchase without scheme",
			orderType: models.OrderTypePurchase,
			mutate:    func(req *SubmitOrderRequest) { req.SchemeCode = "" },
			wantErr:   ErrSchemeCodeRequired,
		},
		{
			name:      "purchase without client",
			orderType: models.OrderTypePurchase,
			mutate:    func(req *SubmitOrderRequest) { req.ClientID = "" },
			wantErr:   ErrClientRequired,
		},
		{
			name:      "purchase with malformed client code",
			orderType: models.OrderTypePurchase,
			mutate:    func(req *SubmitOrderRequest) { req.ClientID = "has spaces!" },
			wantErr:   ErrClientCodeInvalid,
		},
		{
			name:      "purchase with malformed scheme code",
			orderType: models.OrderTypePurchase,
			mutate:    func(req *SubmitOrderRequest) { req.SchemeCode = "lower|case" },
			wantErr:   ErrSchemeCodeInvalid,
		},
		{
			name:      "redemption without amount or units",
			orderType: models.OrderTypeRedemption,
			mutate: func(req *SubmitOrderRequest) {
				req.Amount = decimal.Zero
				req.Units = decimal.Zero
			},
			wantErr: ErrAmountOrUnitsRequired,
		},
		{
			name:      "switch without target scheme",
			orderType: models.OrderTypeSwitch,
			mutate:    func(req *SubmitOrderRequest) { req.SwitchSchemeCode = "" },
			wantErr:   ErrSwitchSchemesRequired,
		},
		{
			name:      "sip without schedule",
			orderType: models.OrderTypeSIP,
			mutate:    func(req *SubmitOrderRequest) { req.Frequency = "" },
			wantErr:   ErrSIPScheduleRequired,
		},
		{
			name:      "sip with day out of range",
			orderType: models.OrderTypeSIP,
			mutate:    func(req *SubmitOrderRequest) { req.SIPDay = 31 },
			wantErr:   ErrSIPScheduleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &SubmitOrderRequest{
				ClientID:         "UCC001",
				OrderType:        tt.orderType,
				SchemeCode:       "SCHEME1",
				SwitchSchemeCode: "TO1",
				Amount:           decimal.NewFromInt(1000),
				Frequency:        "MONTHLY",
				SIPDay:           5,
				StartDate:        "01/04/2026",
			}
			tt.mutate(req)

			err := strategies[tt.orderType].validate(req)
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
