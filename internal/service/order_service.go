package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"starmf/internal/bse"
	"starmf/internal/models"
	"starmf/internal/repository"
)

// Ошибки сервиса поручений
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrOrderNotCancellable   = errors.New("order status does not permit cancellation")
	ErrNoExchangeOrderNumber = errors.New("order has no exchange order number")
)

// OrderService - оркестрация жизненного цикла поручений: валидация,
// персистентная машина состояний, сборка протокольного payload'а и
// обмен с биржей. Пять видов поручений обслуживаются одним скелетом,
// различия вынесены в orderStrategy.
type OrderService struct {
	orders      OrderRepositoryInterface
	clients     ClientRepositoryInterface
	credentials bse.CredentialProvider
	tokens      bse.TokenProvider
	transport   bse.Transport
	refGen      *bse.ReferenceGenerator
	sandbox     bse.Simulator // nil = боевой режим
	wsHub       OrderBroadcaster
	logger      *zap.Logger
}

// NewOrderService создает сервис поручений. simulator != nil включает
// sandbox-режим: сетевые вызовы к бирже не выполняются.
func NewOrderService(
	orders OrderRepositoryInterface,
	clients ClientRepositoryInterface,
	credentials bse.CredentialProvider,
	tokens bse.TokenProvider,
	transport bse.Transport,
	refGen *bse.ReferenceGenerator,
	simulator bse.Simulator,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:      orders,
		clients:     clients,
		credentials: credentials,
		tokens:      tokens,
		transport:   transport,
		refGen:      refGen,
		sandbox:     simulator,
		logger:      logger,
	}
}

// SetWebSocketHub подключает broadcaster обновлений поручений.
// Вызывается после создания hub'а при старте сервера.
func (s *OrderService) SetWebSocketHub(hub OrderBroadcaster) {
	s.wsHub = hub
}

// SubmitPurchase подает поручение на покупку паев
func (s *OrderService) SubmitPurchase(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	req.OrderType = models.OrderTypePurchase
	return s.submit(ctx, advisorID, req)
}

// SubmitRedemption подает поручение на погашение паев
func (s *OrderService) SubmitRedemption(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	req.OrderType = models.OrderTypeRedemption
	return s.submit(ctx, advisorID, req)
}

// SubmitSwitch подает поручение на обмен паев между схемами
func (s *OrderService) SubmitSwitch(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	req.OrderType = models.OrderTypeSwitch
	return s.submit(ctx, advisorID, req)
}

// SubmitSpread подает spread-поручение (купля с отложенной продажей)
func (s *OrderService) SubmitSpread(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	req.OrderType = models.OrderTypeSpread
	return s.submit(ctx, advisorID, req)
}

// RegisterSIP регистрирует SIP-план периодических покупок
func (s *OrderService) RegisterSIP(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	req.OrderType = models.OrderTypeSIP
	return s.submit(ctx, advisorID, req)
}

// submit - общий путь подачи любого вида поручения:
//  1. валидация запроса (без побочных эффектов)
//  2. проверка принадлежности клиента советнику
//  3. получение учетных данных участника
//  4. генерация уникального reference number
//  5. персист записи в статусе CREATED
//  6. обмен с биржей и фиксация исхода
//
// Любая ошибка после шага 5 переводит запись в FAILED через
// compare-and-set: если конкурентный путь уже зафиксировал
// SUBMITTED или REJECTED, перевод не срабатывает.
func (s *OrderService) submit(ctx context.Context, advisorID string, req *SubmitOrderRequest) (*models.Order, error) {
	strategy, ok := strategies[req.OrderType]
	if !ok {
		return nil, ErrUnsupportedOrderType
	}
	if err := strategy.validate(req); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("lookup client: %w", err)
	}
	if client.AdvisorID != advisorID {
		return nil, ErrClientNotFound
	}

	creds, err := s.credentials.Decrypted(ctx, advisorID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	refNo, err := s.refGen.Generate(creds.MemberID)
	if err != nil {
		return nil, fmt.Errorf("generate reference number: %w", err)
	}

	order := strategy.newOrder(req, advisorID, refNo)
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("order created",
		zap.Int("order_id", order.ID),
		zap.String("order_type", order.OrderType),
		zap.String("client_id", order.ClientID),
		zap.String("reference_number", order.ReferenceNumber))

	if err := s.performSubmit(ctx, strategy, req, order, creds); err != nil {
		s.markFailed(order, err)
		return order, err
	}
	return order, nil
}

// performSubmit выполняет обмен с биржей и фиксирует исход в записи.
// Повторных попыток подачи нет: повтор после неоднозначного сетевого
// сбоя создал бы риск дубликата поручения на бирже.
func (s *OrderService) performSubmit(ctx context.Context, strategy *orderStrategy, req *SubmitOrderRequest, order *models.Order, creds *models.MemberCredentials) error {
	var raw string

	if s.sandbox != nil {
		raw = s.sandbox.Response(strategy.sandboxOp)
	} else {
		token, err := s.tokens.OrderEntryToken(ctx, order.AdvisorID)
		if err != nil {
			return fmt.Errorf("obtain order entry token: %w", err)
		}

		pipeParams := bse.BuildPipeParams(strategy.buildParams(req, order, creds, token))
		body := strategy.buildBody(pipeParams, token)

		resp, err := s.transport.Call(ctx, bse.CallRequest{
			Endpoint:  bse.EndpointOrderEntry,
			Action:    strategy.action,
			Body:      body,
			AdvisorID: order.AdvisorID,
			APIName:   strategy.apiName,
			Secrets:   []string{token},
		})
		if err != nil {
			return err
		}

		raw, err = bse.ExtractResult(resp, strategy.resultElement)
		if err != nil {
			bse.ParseFailures.Inc()
			return fmt.Errorf("extract %s: %w", strategy.resultElement, err)
		}
	}

	result, err := bse.ParsePipeResponse(raw)
	if err != nil {
		bse.ParseFailures.Inc()
		return fmt.Errorf("parse exchange response: %w", err)
	}

	if !result.Success {
		// Биржа отклонила поручение: исход фиксируется как REJECTED,
		// до возврата ошибки вызывающему
		if dbErr := s.orders.UpdateRejected(order.ID, result.Code, result.Message); dbErr != nil {
			s.logger.Error("persist rejection failed",
				zap.Int("order_id", order.ID), zap.Error(dbErr))
		} else {
			order.Status = models.OrderStatusRejected
			order.BseResponseCode = result.Code
			order.BseResponseMsg = result.Message
			s.broadcast(order)
		}
		bse.OrderSubmissions.WithLabelValues(order.OrderType, "rejected").Inc()
		s.logger.Warn("order rejected by exchange",
			zap.Int("order_id", order.ID),
			zap.String("code", result.Code),
			zap.String("message", result.Message))
		return result.Err()
	}

	now := time.Now()
	orderNumber := result.OrderNumber()
	if err := s.orders.UpdateSubmitted(order.ID, orderNumber, result.Code, result.Message, now); err != nil {
		return fmt.Errorf("persist submission: %w", err)
	}
	order.Status = models.OrderStatusSubmitted
	order.BseOrderNumber = orderNumber
	order.BseResponseCode = result.Code
	order.BseResponseMsg = result.Message
	order.SubmittedAt = &now

	bse.OrderSubmissions.WithLabelValues(order.OrderType, "submitted").Inc()
	s.logger.Info("order submitted",
		zap.Int("order_id", order.ID),
		zap.String("bse_order_number", orderNumber))
	s.broadcast(order)
	return nil
}

// markFailed переводит поручение CREATED -> FAILED. Никогда не
// затирает уже зафиксированный исход: перевод условный, по текущему
// статусу CREATED.
func (s *OrderService) markFailed(order *models.Order, cause error) {
	moved, err := s.orders.UpdateStatusIf(order.ID,
		models.OrderStatusCreated, models.OrderStatusFailed, cause.Error())
	if err != nil {
		s.logger.Error("mark order failed",
			zap.Int("order_id", order.ID), zap.Error(err))
		return
	}
	if moved {
		order.Status = models.OrderStatusFailed
		order.BseResponseMsg = cause.Error()
		bse.OrderSubmissions.WithLabelValues(order.OrderType, "failed").Inc()
		s.broadcast(order)
	}
}

// Cancel отменяет поручение через CXL-транзакцию биржи.
// Порядок проверок фиксирован: сначала статус, затем наличие биржевого
// номера. При отказе проверки payload не собирается и запрос на биржу
// не уходит. Отклонение отмены биржей НЕ меняет статус поручения.
func (s *OrderService) Cancel(ctx context.Context, advisorID string, orderID int) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lookup order: %w", err)
	}
	if order.AdvisorID != advisorID {
		return nil, ErrOrderNotFound
	}

	switch order.Status {
	case models.OrderStatusSubmitted, models.OrderStatusAccepted, models.OrderStatusPaymentPending:
	default:
		return nil, ErrOrderNotCancellable
	}
	if !order.HasExchangeNumber() {
		return nil, ErrNoExchangeOrderNumber
	}

	creds, err := s.credentials.Decrypted(ctx, advisorID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	var raw string
	if s.sandbox != nil {
		raw = s.sandbox.Response(bse.OpOrderCancel)
	} else {
		token, err := s.tokens.OrderEntryToken(ctx, advisorID)
		if err != nil {
			bse.OrderCancellations.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("obtain order entry token: %w", err)
		}

		pipeParams := bse.BuildPipeParams(buildCancelParams(order, creds, token))
		resp, err := s.transport.Call(ctx, bse.CallRequest{
			Endpoint:  bse.EndpointOrderEntry,
			Action:    bse.ActionOrderEntry,
			Body:      bse.BuildOrderEntryBody(pipeParams),
			AdvisorID: advisorID,
			APIName:   "OrderEntry_CXL",
			Secrets:   []string{token},
		})
		if err != nil {
			bse.OrderCancellations.WithLabelValues("failed").Inc()
			return nil, err
		}

		raw, err = bse.ExtractResult(resp, bse.ResultOrderEntry)
		if err != nil {
			bse.ParseFailures.Inc()
			bse.OrderCancellations.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("extract %s: %w", bse.ResultOrderEntry, err)
		}
	}

	result, err := bse.ParsePipeResponse(raw)
	if err != nil {
		bse.ParseFailures.Inc()
		bse.OrderCancellations.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("parse exchange response: %w", err)
	}

	if !result.Success {
		// Статус поручения остается прежним: отмена не состоялась
		bse.OrderCancellations.WithLabelValues("rejected").Inc()
		s.logger.Warn("cancellation rejected by exchange",
			zap.Int("order_id", order.ID),
			zap.String("code", result.Code),
			zap.String("message", result.Message))
		return nil, result.Err()
	}

	if err := s.orders.UpdateCancelled(order.ID, result.Code, result.Message); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}
	order.Status = models.OrderStatusCancelled
	order.BseResponseCode = result.Code
	order.BseResponseMsg = result.Message

	bse.OrderCancellations.WithLabelValues("cancelled").Inc()
	s.logger.Info("order cancelled", zap.Int("order_id", order.ID),
		zap.String("bse_order_number", order.BseOrderNumber))
	s.broadcast(order)
	return order, nil
}

// GetOrder возвращает поручение советника по идентификатору
func (s *OrderService) GetOrder(advisorID string, orderID int) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.AdvisorID != advisorID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders возвращает поручения советника с фильтрацией
func (s *OrderService) ListOrders(advisorID string, f repository.OrderFilters) ([]*models.Order, error) {
	return s.orders.GetByAdvisor(advisorID, f)
}

// OrderStats возвращает распределение поручений советника по статусам.
// Статусы без поручений в ответ не включаются.
func (s *OrderService) OrderStats(advisorID string) (map[string]int, error) {
	stats := make(map[string]int)
	for _, status := range []string{
		models.OrderStatusCreated,
		models.OrderStatusSubmitted,
		models.OrderStatusAccepted,
		models.OrderStatusPaymentPending,
		models.OrderStatusRejected,
		models.OrderStatusFailed,
		models.OrderStatusCancelled,
	} {
		n, err := s.orders.CountByStatus(advisorID, status)
		if err != nil {
			return nil, fmt.Errorf("count orders in %s: %w", status, err)
		}
		if n > 0 {
			stats[status] = n
		}
	}
	return stats, nil
}

func (s *OrderService) broadcast(order *models.Order) {
	if s.wsHub != nil {
		s.wsHub.BroadcastOrderUpdate(order)
	}
}
