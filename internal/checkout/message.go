package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/whatsapp"
)

// At most this many lines appear in the message; the rest collapses into an
// overflow count.
const messageItemLimit = 10

// ComposeMessage builds the order summary sent over the messaging handoff.
// Prices and the total only appear when the session may see them.
func ComposeMessage(storeName string, success *OrderSuccess, pricesVisible bool) string {
	if success == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pedido %s - %s\n", success.DisplayID, storeName)
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", success.Customer.Name, success.Customer.Phone)
	b.WriteString("\nItens:\n")

	shown := success.Lines
	overflow := 0
	if len(shown) > messageItemLimit {
		overflow = len(shown) - messageItemLimit
		shown = shown[:messageItemLimit]
	}
	for _, line := range shown {
		if pricesVisible {
			fmt.Fprintf(&b, "- %dx %s (R$ %s)\n", line.Quantity, line.Name, line.Price.StringFixed(2))
		} else {
			fmt.Fprintf(&b, "- %dx %s\n", line.Quantity, line.Name)
		}
	}
	if overflow > 0 {
		fmt.Fprintf(&b, "... e mais %d itens\n", overflow)
	}

	if pricesVisible {
		fmt.Fprintf(&b, "\nTotal: R$ %s\n", success.Total.StringFixed(2))
	}
	if success.ReceiptURL != "" {
		fmt.Fprintf(&b, "\nComprovante: %s\n", success.ReceiptURL)
	}
	return b.String()
}

// MessageLink resolves the destination contact and builds the messaging deep
// link. The tenant's representative override wins over the store's own phone.
// Fire-and-forget: opening the link is the caller's concern and nothing here
// feeds back into engine state.
func (s *service) MessageLink(ctx context.Context, store *models.Store, success *OrderSuccess, pricesVisible bool) (string, error) {
	if store == nil || success == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store and order confirmation are required")
	}

	phone := ""
	if contact, err := s.orders.RepresentativeContact(ctx, store.OwnerID.String()); err == nil && contact != "" {
		phone = contact
	} else if err != nil && s.logg != nil {
		s.logg.Warn(ctx, "representative lookup failed: "+err.Error())
	}
	if phone == "" {
		phone = store.MessagingPhone()
	}

	link := whatsapp.Link(phone, ComposeMessage(store.Name, success, pricesVisible))
	if link == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store has no messaging contact configured")
	}
	return link, nil
}
