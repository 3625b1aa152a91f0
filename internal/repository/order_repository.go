package repository

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"starmf/internal/models"
)

// Ошибки репозитория поручений
var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderFilters - фильтры выборки поручений советника
type OrderFilters struct {
	ClientID  string
	Status    string
	OrderType string
	Limit     int
	Offset    int
}

const orderColumns = `id, client_id, advisor_id, order_type, trans_code, buy_sell, buy_sell_type,
		scheme_code, switch_scheme_code, amount, units, dp_txn_mode, folio_number,
		reference_number, bse_order_number, bse_response_code, bse_response_msg,
		status, created_at, submitted_at`

// OrderRepository - работа с таблицей orders
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository создает новый экземпляр репозитория
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create создает запись о поручении. Уникальность reference_number
// per member дополнительно гарантируется unique-индексом.
func (r *OrderRepository) Create(order *models.Order) error {
	query := `
		INSERT INTO orders (client_id, advisor_id, order_type, trans_code, buy_sell, buy_sell_type,
			scheme_code, switch_scheme_code, amount, units, dp_txn_mode, folio_number,
			reference_number, bse_order_number, bse_response_code, bse_response_msg,
			status, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`

	order.CreatedAt = time.Now()

	return r.db.QueryRow(
		query,
		order.ClientID,
		order.AdvisorID,
		order.OrderType,
		order.TransCode,
		order.BuySell,
		order.BuySellType,
		order.SchemeCode,
		order.SwitchSchemeCode,
		order.Amount,
		order.Units,
		order.DPTxnMode,
		order.FolioNumber,
		order.ReferenceNumber,
		order.BseOrderNumber,
		order.BseResponseCode,
		order.BseResponseMsg,
		order.Status,
		order.CreatedAt,
		order.SubmittedAt,
	).Scan(&order.ID)
}

// GetByID возвращает поручение по ID
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order := &models.Order{}
	err := r.db.QueryRow(query, id).Scan(orderFields(order)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetByAdvisor возвращает поручения советника с фильтрами и пагинацией
func (r *OrderRepository) GetByAdvisor(advisorID string, f OrderFilters) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE advisor_id = $1`
	args := []interface{}{advisorID}

	if f.ClientID != "" {
		args = append(args, f.ClientID)
		query += ` AND client_id = $` + itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	if f.OrderType != "" {
		args = append(args, f.OrderType)
		query += ` AND order_type = $` + itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))

	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(orderFields(order)...); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateSubmitted фиксирует успешную отправку: статус SUBMITTED,
// присвоенный биржей номер, код/сообщение и момент отправки
func (r *OrderRepository) UpdateSubmitted(id int, bseOrderNumber, code, message string, submittedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = $1, bse_order_number = $2, bse_response_code = $3, bse_response_msg = $4, submitted_at = $5
		WHERE id = $6`

	return r.execExpectingRow(query, models.OrderStatusSubmitted, bseOrderNumber, code, message, submittedAt, id)
}

// UpdateRejected фиксирует отклонение биржей: статус REJECTED с кодом и
// сообщением биржи, номер поручения остается пустым
func (r *OrderRepository) UpdateRejected(id int, code, message string) error {
	query := `
		UPDATE orders
		SET status = $1, bse_response_code = $2, bse_response_msg = $3
		WHERE id = $4`

	return r.execExpectingRow(query, models.OrderStatusRejected, code, message, id)
}

// UpdateCancelled фиксирует успешную отмену поручения
func (r *OrderRepository) UpdateCancelled(id int, code, message string) error {
	query := `
		UPDATE orders
		SET status = $1, bse_response_code = $2, bse_response_msg = $3
		WHERE id = $4`

	return r.execExpectingRow(query, models.OrderStatusCancelled, code, message, id)
}

// UpdateStatusIf - условное (compare-and-set) обновление статуса:
// срабатывает только если текущий статус равен fromStatus. Возвращает
// false без ошибки если другой путь уже финализировал запись -
// вызывающий обязан трактовать это как no-op, не как сбой.
func (r *OrderRepository) UpdateStatusIf(id int, fromStatus, toStatus, message string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1, bse_response_msg = $2
		WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, toStatus, message, id, fromStatus)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// CountByStatus возвращает количество поручений советника в статусе
func (r *OrderRepository) CountByStatus(advisorID, status string) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE advisor_id = $1 AND status = $2`

	var count int
	if err := r.db.QueryRow(query, advisorID, status).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// execExpectingRow выполняет UPDATE и требует ровно одну затронутую строку
func (r *OrderRepository) execExpectingRow(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// orderFields возвращает указатели на поля в порядке orderColumns
func orderFields(o *models.Order) []interface{} {
	return []interface{}{
		&o.ID,
		&o.ClientID,
		&o.AdvisorID,
		&o.OrderType,
		&o.TransCode,
		&o.BuySell,
		&o.BuySellType,
		&o.SchemeCode,
		&o.SwitchSchemeCode,
		&o.Amount,
		&o.Units,
		&o.DPTxnMode,
		&o.FolioNumber,
		&o.ReferenceNumber,
		&o.BseOrderNumber,
		&o.BseResponseCode,
		&o.BseResponseMsg,
		&o.Status,
		&o.CreatedAt,
		&o.SubmittedAt,
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
