package payment

import (
	"errors"
	"fmt"

	"github.com/streamtip/donatio/internal/models"
)

var ErrUnknownMethod = errors.New("unknown payment method")

var defaultMethods = []models.PaymentMethod{
	{ID: "qiwi", DisplayName: "QIWI", Icon: "Wallet", Color: "text-orange-500", FeePercentage: 2.5, RequiresPhone: true},
	{ID: "sberbank", DisplayName: "Sberbank", Icon: "CreditCard", Color: "text-green-500", FeePercentage: 1.5},
	{ID: "tinkoff", DisplayName: "Tinkoff", Icon: "Banknote", Color: "text-yellow-500", FeePercentage: 2},
}

// Catalog is the fixed list of selectable payment methods.
type Catalog struct {
	methods []models.PaymentMethod
}

func DefaultCatalog() *Catalog {
	return &Catalog{methods: defaultMethods}
}

func (c *Catalog) Methods() []models.PaymentMethod {
	out := make([]models.PaymentMethod, len(c.methods))
	copy(out, c.methods)
	return out
}

func (c *Catalog) Lookup(id string) (models.PaymentMethod, error) {
	for _, m := range c.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return models.PaymentMethod{}, fmt.Errorf("%w: %q", ErrUnknownMethod, id)
}
