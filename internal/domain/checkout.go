package domain

// ManifestLine is one priced entry handed to the payment gateway. Name and
// unit price are re-read from the product catalog when the manifest is
// built, never taken from the client.
type ManifestLine struct {
	ProductID      string
	Name           string
	UnitPriceCents int64
	Quantity       int64
	ImageURL       string
}

// CheckoutManifest is the ephemeral, request-scoped priced list for one
// checkout attempt. It is never persisted.
type CheckoutManifest struct {
	CartID   string
	Currency string
	Lines    []ManifestLine
}

func (m CheckoutManifest) TotalCents() int64 {
	var total int64
	for _, l := range m.Lines {
		total += l.UnitPriceCents * l.Quantity
	}
	return total
}

// CustomerDetails carries the contact/address fields collected on the
// checkout form.
type CustomerDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// CheckoutSession is the gateway's answer to a session-creation call.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
