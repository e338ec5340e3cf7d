package usecase

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/pkg/phone"
)

const maxNameLength = 100

// ValidateOrder checks a submission and returns the header to insert, with the
// phone in canonical form and the total recomputed from the lines.
func ValidateOrder(req model.OrderRequest) (model.NewOrder, []model.OrderLine, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return model.NewOrder{}, nil, invalid("customer_name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return model.NewOrder{}, nil, invalid("customer_name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	canonical, err := phone.Normalize(req.CustomerPhone)
	if err != nil {
		return model.NewOrder{}, nil, invalid("customer_phone", "not a valid Algerian or Mauritanian mobile number")
	}

	if len(req.Lines) == 0 {
		return model.NewOrder{}, nil, invalid("items", "must contain at least one item")
	}

	lines := make([]model.OrderLine, 0, len(req.Lines))
	var total int64
	for i, l := range req.Lines {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		l.MenuItemID = strings.TrimSpace(l.MenuItemID)
		l.NameFr = strings.TrimSpace(l.NameFr)
		l.NameAr = strings.TrimSpace(l.NameAr)
		switch {
		case l.MenuItemID == "":
			return model.NewOrder{}, nil, invalid(field("menu_item_id"), "must not be empty")
		case l.NameFr == "":
			return model.NewOrder{}, nil, invalid(field("item_name_fr"), "must not be empty")
		case l.Quantity <= 0:
			return model.NewOrder{}, nil, invalid(field("quantity"), "must be positive")
		case l.UnitPrice < 0:
			return model.NewOrder{}, nil, invalid(field("unit_price"), "must not be negative")
		}

		if l.UnitPrice > 0 && int64(l.Quantity) > (math.MaxInt64-total)/l.UnitPrice {
			return model.NewOrder{}, nil, invalid(field("quantity"), "order total is out of range")
		}
		total += l.Subtotal()
		lines = append(lines, l)
	}

	if req.ClaimedTotal < 0 {
		return model.NewOrder{}, nil, invalid("total_amount", "must not be negative")
	}
	if req.ClaimedTotal != total {
		return model.NewOrder{}, nil, invalid("total_amount", fmt.Sprintf("does not match the items (expected %d)", total))
	}

	return model.NewOrder{CustomerName: name, CustomerPhone: canonical, Total: total}, lines, nil
}

func invalid(field, reason string) error {
	return &domainErrors.ValidationError{Field: field, Reason: reason}
}
