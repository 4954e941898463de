package enums

import "fmt"

// OrderStatusCode is the code of a backend status entity attached to an order.
// The backend owns the list; these are the codes the dashboard reasons about.
type OrderStatusCode string

const (
	OrderStatusEnAttente    OrderStatusCode = "en_attente"
	OrderStatusCollectee    OrderStatusCode = "collectee"
	OrderStatusEnTraitement OrderStatusCode = "en_traitement"
	OrderStatusPrete        OrderStatusCode = "prete"
	OrderStatusEnLivraison  OrderStatusCode = "en_livraison"
	OrderStatusLivree       OrderStatusCode = "livree"
	OrderStatusAnnulee      OrderStatusCode = "annulee"
)

var validOrderStatusCodes = []OrderStatusCode{
	OrderStatusEnAttente,
	OrderStatusCollectee,
	OrderStatusEnTraitement,
	OrderStatusPrete,
	OrderStatusEnLivraison,
	OrderStatusLivree,
	OrderStatusAnnulee,
}

func (c OrderStatusCode) String() string {
	return string(c)
}

func (c OrderStatusCode) IsValid() bool {
	for _, candidate := range validOrderStatusCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsOpen reports whether the order still needs work from the pressing.
func (c OrderStatusCode) IsOpen() bool {
	return c != OrderStatusLivree && c != OrderStatusAnnulee
}

func ParseOrderStatusCode(value string) (OrderStatusCode, error) {
	for _, candidate := range validOrderStatusCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status code %q", value)
}
