package service

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"starmf/internal/bse"
	"starmf/internal/models"
	"starmf/pkg/utils"
)

// Ошибки валидации запросов. Возвращаются до любых побочных эффектов:
// запись не создается, wire-payload не собирается.
var (
	ErrUnsupportedOrderType  = errors.New("unsupported order type")
	ErrClientRequired        = errors.New("client id is required")
	ErrClientCodeInvalid     = errors.New("client code has invalid format")
	ErrSchemeCodeRequired    = errors.New("scheme code is required")
	ErrSchemeCodeInvalid     = errors.New("scheme code has invalid format")
	ErrAmountRequired        = errors.New("amount must be positive")
	ErrAmountOrUnitsRequired = errors.New("either amount or units is required")
	ErrSwitchSchemesRequired = errors.New("both source and target scheme codes are required for switch")
	ErrSIPScheduleRequired   = errors.New("sip frequency, day and start date are required")
)

// SubmitOrderRequest - запрос на подачу поручения. Нулевые Amount/Units
// означают "не задано" и кодируются пустыми позициями wire-payload'а.
type SubmitOrderRequest struct {
	ClientID         string          `json:"client_id"`
	OrderType        string          `json:"-"` // задается методом сервиса
	SchemeCode       string          `json:"scheme_code"`
	SwitchSchemeCode string          `json:"switch_scheme_code,omitempty"` // целевая схема для SWITCH
	BuySellType      string          `json:"buy_sell_type,omitempty"`      // FRESH / ADDITIONAL
	Amount           decimal.Decimal `json:"amount"`
	Units            decimal.Decimal `json:"units"`
	DPTxnMode        string          `json:"dp_txn_mode,omitempty"` // default P
	FolioNumber      string          `json:"folio_number,omitempty"`
	Remarks          string          `json:"remarks,omitempty"`

	// Параметры SIP-регистрации (не персистятся: расписание ведет
	// внешняя подсистема, здесь они нужны только для wire-payload'а)
	Frequency      string `json:"frequency,omitempty"` // MONTHLY, WEEKLY, QUARTERLY
	SIPDay         int    `json:"sip_day,omitempty"`   // день списания 1-28
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	Installments   int    `json:"installments,omitempty"`    // 0 = бессрочно (999)
	FirstOrderFlag string `json:"first_order_flag,omitempty"` // default Y
}

// orderStrategy описывает отличия вида поручения: предикат валидации,
// отображение полей в позиции протокола и привязку к SOAP операции.
// Пять видов поручений используют один оркестрационный скелет.
type orderStrategy struct {
	orderType     string
	apiName       string
	action        string
	resultElement string
	sandboxOp     string
	validate      func(req *SubmitOrderRequest) error
	newOrder      func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order
	buildParams   func(req *SubmitOrderRequest, o *models.Order, creds *models.MemberCredentials, token string) []string
	buildBody     func(pipeParams, token string) string
}

var strategies = map[string]*orderStrategy{
	models.OrderTypePurchase: {
		orderType:     models.OrderTypePurchase,
		apiName:       "OrderEntry_NEW_P",
		action:        bse.ActionOrderEntry,
		resultElement: bse.ResultOrderEntry,
		sandboxOp:     bse.OpOrderEntry,
		validate: func(req *SubmitOrderRequest) error {
			if err := validateCommon(req); err != nil {
				return err
			}
			if !req.Amount.IsPositive() {
				return ErrAmountRequired
			}
			return nil
		},
		newOrder: func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
			o := baseOrder(req, advisorID, refNo)
			o.BuySell = models.BuySellPurchase
			if o.BuySellType == "" {
				o.BuySellType = models.BuySellTypeFresh
			}
			return o
		},
		buildParams: buildOrderEntryParams,
		buildBody:   orderEntryBody,
	},
	models.OrderTypeRedemption: {
		orderType:     models.OrderTypeRedemption,
		apiName:       "OrderEntry_NEW_R",
		action:        bse.ActionOrderEntry,
		resultElement: bse.ResultOrderEntry,
		sandboxOp:     bse.OpOrderEntry,
		validate: func(req *SubmitOrderRequest) error {
			if err := validateCommon(req); err != nil {
				return err
			}
			if !req.Amount.IsPositive() && !req.Units.IsPositive() {
				return ErrAmountOrUnitsRequired
			}
			return nil
		},
		newOrder: func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
			o := baseOrder(req, advisorID, refNo)
			o.BuySell = models.BuySellRedemption
			return o
		},
		buildParams: buildOrderEntryParams,
		buildBody:   orderEntryBody,
	},
	models.OrderTypeSwitch: {
		orderType:     models.OrderTypeSwitch,
		apiName:       "SwitchOrderEntry",
		action:        bse.ActionSwitchEntry,
		resultElement: bse.ResultSwitchEntry,
		sandboxOp:     bse.OpSwitchEntry,
		validate: func(req *SubmitOrderRequest) error {
			if req.ClientID == "" {
				return ErrClientRequired
			}
			if utils.ValidateClientCode(req.ClientID) != nil {
				return ErrClientCodeInvalid
			}
			if req.SchemeCode == "" || req.SwitchSchemeCode == "" {
				return ErrSwitchSchemesRequired
			}
			if utils.ValidateSchemeCode(req.SchemeCode) != nil ||
				utils.ValidateSchemeCode(req.SwitchSchemeCode) != nil {
				return ErrSchemeCodeInvalid
			}
			if !req.Amount.IsPositive() && !req.Units.IsPositive() {
				return ErrAmountOrUnitsRequired
			}
			return nil
		},
		newOrder: func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
			o := baseOrder(req, advisorID, refNo)
			o.BuySell = models.BuySellPurchase
			o.SwitchSchemeCode = req.SwitchSchemeCode
			return o
		},
		buildParams: buildSwitchEntryParams,
		buildBody:   switchEntryBody,
	},
	models.OrderTypeSpread: {
		orderType:     models.OrderTypeSpread,
		apiName:       "SpreadOrderEntry",
		action:        bse.ActionSpreadEntry,
		resultElement: bse.ResultSpreadEntry,
		sandboxOp:     bse.OpSpreadEntry,
		validate: func(req *SubmitOrderRequest) error {
			if err := validateCommon(req); err != nil {
				return err
			}
			if !req.Amount.IsPositive() {
				return ErrAmountRequired
			}
			return nil
		},
		newOrder: func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
			o := baseOrder(req, advisorID, refNo)
			o.BuySell = models.BuySellPurchase
			return o
		},
		buildParams: buildSpreadEntryParams,
		buildBody:   spreadEntryBody,
	},
	models.OrderTypeSIP: {
		orderType:     models.OrderTypeSIP,
		apiName:       "SIPOrderEntry",
		action:        bse.ActionSIPEntry,
		resultElement: bse.ResultSIPEntry,
		sandboxOp:     bse.OpSIPEntry,
		validate: func(req *SubmitOrderRequest) error {
			if err := validateCommon(req); err != nil {
				return err
			}
			if !req.Amount.IsPositive() {
				return ErrAmountRequired
			}
			if req.Frequency == "" || req.StartDate == "" || req.SIPDay < 1 || req.SIPDay > 28 {
				return ErrSIPScheduleRequired
			}
			return nil
		},
		newOrder: func(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
			o := baseOrder(req, advisorID, refNo)
			o.BuySell = models.BuySellPurchase
			return o
		},
		buildParams: buildSIPEntryParams,
		buildBody:   sipEntryBody,
	},
}

func validateCommon(req *SubmitOrderRequest) error {
	if req.ClientID == "" {
		return ErrClientRequired
	}
	if utils.ValidateClientCode(req.ClientID) != nil {
		return ErrClientCodeInvalid
	}
	if req.SchemeCode == "" {
		return ErrSchemeCodeRequired
	}
	if utils.ValidateSchemeCode(req.SchemeCode) != nil {
		return ErrSchemeCodeInvalid
	}
	return nil
}

func baseOrder(req *SubmitOrderRequest, advisorID, refNo string) *models.Order {
	dpTxn := req.DPTxnMode
	if dpTxn == "" {
		dpTxn = "P"
	}
	return &models.Order{
		ClientID:        req.ClientID,
		AdvisorID:       advisorID,
		OrderType:       req.OrderType,
		TransCode:       models.TransCodeNew,
		BuySellType:     req.BuySellType,
		SchemeCode:      req.SchemeCode,
		Amount:          req.Amount,
		Units:           req.Units,
		DPTxnMode:       dpTxn,
		FolioNumber:     req.FolioNumber,
		ReferenceNumber: refNo,
		Status:          models.OrderStatusCreated,
	}
}

// buildOrderEntryParams собирает 26 позиций orderEntryParam (NEW).
// Порядок фиксирован протоколом биржи: пустые поля занимают позицию.
func buildOrderEntryParams(req *SubmitOrderRequest, o *models.Order, creds *models.MemberCredentials, token string) []string {
	return []string{
		o.TransCode,             // 0  TransCode (NEW)
		o.ReferenceNumber,       // 1  UniqueRefNo
		o.BseOrderNumber,        // 2  OrderId (пусто для нового)
		creds.MemberID,          // 3  MemberId
		o.ClientID,              // 4  ClientCode
		o.SchemeCode,            // 5  SchemeCode
		o.BuySell,               // 6  BuySell (P/R)
		o.BuySellType,           // 7  BuySellType (FRESH/ADDITIONAL)
		o.DPTxnMode,             // 8  DPTxn
		decimalField(o.Amount),  // 9  OrderVal
		decimalField(o.Units),   // 10 Qty
		"",                      // 11 AllRedeem
		o.FolioNumber,           // 12 FolioNo
		req.Remarks,             // 13 Remarks
		"",                      // 14 KYCStatus
		"",                      // 15 RefNo
		"",                      // 16 SubBrCode
		creds.EUIN,              // 17 EUIN
		euinFlag(creds.EUIN),    // 18 EUINVal
		"",                      // 19 MinRedeem
		"",                      // 20 DPC
		"",                      // 21 IPAdd
		token,                   // 22 Password
		"",                      // 23 Param1
		"",                      // 24 Param2
		"",                      // 25 Param3
	}
}

// buildCancelParams собирает 26 позиций orderEntryParam (CXL) из
// идентифицирующих полей исходного поручения. EUINVal для отмены
// всегда "N".
func buildCancelParams(o *models.Order, creds *models.MemberCredentials, token string) []string {
	return []string{
		models.TransCodeCancel, // 0  TransCode (CXL)
		o.ReferenceNumber,      // 1  UniqueRefNo
		o.BseOrderNumber,       // 2  OrderId
		creds.MemberID,         // 3  MemberId
		o.ClientID,             // 4  ClientCode
		o.SchemeCode,           // 5  SchemeCode
		o.BuySell,              // 6  BuySell
		o.BuySellType,          // 7  BuySellType
		o.DPTxnMode,            // 8  DPTxn
		decimalField(o.Amount), // 9  OrderVal
		"",                     // 10 Qty
		"",                     // 11 AllRedeem
		o.FolioNumber,          // 12 FolioNo
		"",                     // 13 Remarks
		"",                     // 14 KYCStatus
		"",                     // 15 RefNo
		"",                     // 16 SubBrCode
		creds.EUIN,             // 17 EUIN
		"N",                    // 18 EUINVal (для CXL всегда N)
		"",                     // 19 MinRedeem
		"",                     // 20 DPC
		"",                     // 21 IPAdd
		token,                  // 22 Password
		"",                     // 23 Param1
		"",                     // 24 Param2
		"",                     // 25 Param3
	}
}

// buildSwitchEntryParams собирает 23 позиции switchOrderEntryParam
func buildSwitchEntryParams(req *SubmitOrderRequest, o *models.Order, creds *models.MemberCredentials, token string) []string {
	return []string{
		o.TransCode,              // 0  TransCode (NEW)
		o.ReferenceNumber,        // 1  UniqueRefNo
		"",                       // 2  OrderId (пусто для нового)
		creds.MemberID,           // 3  MemberId
		o.ClientID,               // 4  ClientCode
		o.SchemeCode,             // 5  FromSchemeCd
		o.SwitchSchemeCode,       // 6  ToSchemeCd
		o.BuySellType,            // 7  BuySellType
		decimalField(o.Amount),   // 8  Amount
		decimalField(o.Units),    // 9  Qty
		"",                       // 10 AllUnits
		o.FolioNumber,            // 11 FolioNo
		req.Remarks,              // 12 Remarks
		"",                       // 13 KYCStatus
		"",                       // 14 SubBrCode
		creds.EUIN,               // 15 EUIN
		euinFlag(creds.EUIN),     // 16 EUINVal
		"",                       // 17 MinRedeem
		"",                       // 18 IPAdd
		token,                    // 19 Password
		"",                       // 20 Param1
		"",                       // 21 Param2
		"",                       // 22 Param3
	}
}

// buildSpreadEntryParams собирает 18 позиций spreadOrderEntryParam
func buildSpreadEntryParams(req *SubmitOrderRequest, o *models.Order, creds *models.MemberCredentials, token string) []string {
	return []string{
		o.TransCode,            // 0  TransCode (NEW)
		o.ReferenceNumber,      // 1  UniqueRefNo
		"",                     // 2  OrderId (пусто для нового)
		creds.MemberID,         // 3  MemberId
		o.ClientID,             // 4  ClientCode
		o.SchemeCode,           // 5  SchemeCode
		decimalField(o.Amount), // 6  Amount
		o.FolioNumber,          // 7  FolioNo
		req.Remarks,            // 8  Remarks
		"",                     // 9  KYCStatus
		"",                     // 10 SubBrCode
		creds.EUIN,             // 11 EUIN
		euinFlag(creds.EUIN),   // 12 EUINVal
		"",                     // 13 IPAdd
		token,                  // 14 Password
		"",                     // 15 Param1
		"",                     // 16 Param2
		"",                     // 17 Param3
	}
}

// buildSIPEntryParams собирает 18 позиций sipOrderEntryParam.
// Раскладка отличается от order-entry семейства: токен уходит
// отдельным элементом тела, а не позицией pipe-строки.
func buildSIPEntryParams(req *SubmitOrderRequest, o *models.Order, creds *models.MemberCredentials, token string) []string {
	installments := req.Installments
	if installments <= 0 {
		installments = 999 // бессрочный SIP
	}
	firstOrder := req.FirstOrderFlag
	if firstOrder == "" {
		firstOrder = "Y"
	}
	return []string{
		o.ReferenceNumber,          // 0  TransNo
		o.ClientID,                 // 1  ClientCode
		o.SchemeCode,               // 2  SchemeCode
		o.TransCode,                // 3  TransCode (NEW)
		creds.MemberID,             // 4  MemberCode
		decimalField(o.Amount),     // 5  InstallmentAmount
		strconv.Itoa(installments), // 6  NoOfInstallments
		req.Frequency,              // 7  Frequency
		strconv.Itoa(req.SIPDay),   // 8  SIPDay
		req.StartDate,              // 9  StartDate
		req.EndDate,                // 10 EndDate
		firstOrder,                 // 11 FirstOrderFlag
		o.FolioNumber,              // 12 FolioNo
		creds.ARN,                  // 13 ARN
		creds.EUIN,                 // 14 EUIN
		euinFlag(creds.EUIN),       // 15 EUINDecl
		"P",                        // 16 DPC
		"",                         // 17 SubBrCode
	}
}

func orderEntryBody(pipeParams, _ string) string {
	return bse.BuildOrderEntryBody(pipeParams)
}

func switchEntryBody(pipeParams, _ string) string {
	return bse.BuildSwitchOrderEntryBody(pipeParams)
}

func spreadEntryBody(pipeParams, _ string) string {
	return bse.BuildSpreadOrderEntryBody(pipeParams)
}

func sipEntryBody(pipeParams, token string) string {
	return bse.BuildSIPOrderEntryBody(token, pipeParams)
}

// euinFlag выводит флаг EUIN-валидации: "Y" если EUIN брокера задан
func euinFlag(euin string) string {
	if euin != "" {
		return "Y"
	}
	return "N"
}

// decimalField переводит число в строку без разделителей тысяч;
// ноль означает незаполненную позицию
func decimalField(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
