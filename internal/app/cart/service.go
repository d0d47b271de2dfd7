package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/domain"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"
	"github.com/shopspring/decimal"
)

// Service owns cart lines. Every mutation runs inside store.WithOrder, so
// the read of the current line, the price derivation and the write are one
// unit per order.
type Service struct {
	store   interfaces.OrderStore
	catalog interfaces.CatalogService
	logger  logger.Logger
}

func NewService(store interfaces.OrderStore, catalog interfaces.CatalogService, logger logger.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// AddOrUpdateLine sets the line for itemName to quantity at the current
// catalog price. An existing line is replaced, not summed.
func (s *Service) AddOrUpdateLine(ctx context.Context, orderID int64, itemName string, quantity int) (*domain.LineSnapshot, error) {
	return s.upsert(ctx, orderID, itemName, quantity, nil)
}

// AddOrUpdateLineAt is AddOrUpdateLine with an explicit unit price.
func (s *Service) AddOrUpdateLineAt(ctx context.Context, orderID int64, itemName string, quantity int, unitPrice decimal.Decimal) (*domain.LineSnapshot, error) {
	return s.upsert(ctx, orderID, itemName, quantity, &unitPrice)
}

func (s *Service) upsert(ctx context.Context, orderID int64, itemName string, quantity int, unitPrice *decimal.Decimal) (*domain.LineSnapshot, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if unitPrice != nil && unitPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}

	var snapshot domain.LineSnapshot
	err := s.store.WithOrder(ctx, orderID, func(tx interfaces.OrderTx) error {
		order := tx.Order()
		if !order.IsOpen() {
			return fmt.Errorf("%w: order %d is %s", domain.ErrOrderNotOpen, orderID, order.Status())
		}

		item, err := s.catalog.Resolve(ctx, itemName)
		if err != nil {
			return err
		}

		price := item.Price
		if unitPrice != nil {
			price = *unitPrice
		}

		line, err := tx.Line(ctx, item.ID)
		switch {
		case err == nil:
			replaced, err := line.Replace(quantity, price)
			if err != nil {
				return err
			}
			replaced.ItemName = item.Name
			*line = replaced
		case errors.Is(err, domain.ErrLineNotFound):
			created, err := domain.NewOrderLine(order.ID, item, quantity, price)
			if err != nil {
				return err
			}
			line = &created
		default:
			return err
		}

		if err := tx.PutLine(ctx, *line); err != nil {
			return err
		}
		order.Touch()
		if err := tx.SaveTracking(ctx); err != nil {
			return err
		}

		snapshot = line.Snapshot()
		return nil
	})
	if err != nil {
		s.logFailure("add_line_failed", orderID, itemName, err)
		return nil, err
	}

	s.logger.Debug("line_upserted", fmt.Sprintf("Order %d now has %d x %s", orderID, snapshot.Quantity, snapshot.ItemName), "", map[string]interface{}{
		"order_id":    orderID,
		"item_id":     snapshot.ItemID,
		"quantity":    snapshot.Quantity,
		"total_price": snapshot.TotalPrice.StringFixed(domain.PricePlaces),
	})
	return &snapshot, nil
}

// RemoveLine takes quantity units of itemName off the order. Removing at
// least the current quantity deletes the line.
func (s *Service) RemoveLine(ctx context.Context, orderID int64, itemName string, quantity int) (*interfaces.RemoveResult, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.remove(ctx, orderID, itemName, quantity)
}

// DeleteLine drops the whole line for itemName.
func (s *Service) DeleteLine(ctx context.Context, orderID int64, itemName string) error {
	_, err := s.remove(ctx, orderID, itemName, 0)
	return err
}

// remove with quantity 0 deletes the line outright.
func (s *Service) remove(ctx context.Context, orderID int64, itemName string, quantity int) (*interfaces.RemoveResult, error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}

	result := &interfaces.RemoveResult{}
	err := s.store.WithOrder(ctx, orderID, func(tx interfaces.OrderTx) error {
		order := tx.Order()
		if !order.IsOpen() {
			return fmt.Errorf("%w: order %d is %s", domain.ErrOrderNotOpen, orderID, order.Status())
		}

		item, err := s.catalog.ResolveAny(ctx, itemName)
		if err != nil {
			return err
		}

		line, err := tx.Line(ctx, item.ID)
		if err != nil {
			return err
		}

		remaining, kept := line.Decrement(quantity)
		if quantity == 0 {
			kept = false
		}

		if kept {
			if err := tx.PutLine(ctx, remaining); err != nil {
				return err
			}
			snapshot := remaining.Snapshot()
			result.Line = &snapshot
		} else {
			if err := tx.DeleteLine(ctx, item.ID); err != nil {
				return err
			}
			result.Removed = true
		}

		order.Touch()
		return tx.SaveTracking(ctx)
	})
	if err != nil {
		s.logFailure("remove_line_failed", orderID, itemName, err)
		return nil, err
	}

	s.logger.Debug("line_removed", fmt.Sprintf("Removed %s from order %d", itemName, orderID), "", map[string]interface{}{
		"order_id": orderID,
		"quantity": quantity,
		"removed":  result.Removed,
	})
	return result, nil
}

// Clear deletes every line and cancels the order in one unit. Clearing a
// cancelled order changes nothing and returns a nil change.
func (s *Service) Clear(ctx context.Context, orderID int64) (*domain.StatusChange, error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}

	var change *domain.StatusChange
	var removed int64
	err := s.store.WithOrder(ctx, orderID, func(tx interfaces.OrderTx) error {
		order := tx.Order()
		if order.Status() == domain.StatusCancelled {
			return nil
		}

		from := order.Status()
		if err := order.TransitionTo(domain.StatusCancelled); err != nil {
			return fmt.Errorf("%w: order %d is %s", err, orderID, from)
		}

		n, err := tx.ClearLines(ctx)
		if err != nil {
			return err
		}
		removed = n

		if err := tx.SaveTracking(ctx); err != nil {
			return err
		}

		change = &domain.StatusChange{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			From:      from,
			To:        domain.StatusCancelled,
			At:        order.Tracking.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		s.logFailure("clear_order_failed", orderID, "", err)
		return nil, err
	}

	if change != nil {
		s.logger.Info("order_cancelled", fmt.Sprintf("Order %d cancelled, %d items removed", orderID, removed), "", map[string]interface{}{
			"order_id":      orderID,
			"items_removed": removed,
		})
	}
	return change, nil
}

// ComputeOrderTotal sums the line totals; an order without lines totals zero.
func (s *Service) ComputeOrderTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	total, err := s.store.SumLineTotals(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute order total: %w", err)
	}
	return total, nil
}

func (s *Service) PriceOf(ctx context.Context, itemName string) (decimal.Decimal, error) {
	return s.catalog.PriceOf(ctx, itemName)
}

func (s *Service) OrderSummary(ctx context.Context, orderID int64) (*domain.OrderSummary, error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	summary := order.Summary()
	return &summary, nil
}

func (s *Service) OrderDetails(ctx context.Context, orderID int64) ([]domain.LineSnapshot, error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.Details(), nil
}

func (s *Service) logFailure(action string, orderID int64, itemName string, err error) {
	details := map[string]interface{}{"order_id": orderID}
	if itemName != "" {
		details["item_name"] = itemName
	}
	if domain.IsRejection(err) {
		details["reason"] = err.Error()
		s.logger.Debug(action, "Cart operation rejected", "", details)
		return
	}
	s.logger.Error(action, "Cart operation rolled back", "", details, err)
}
