package marketplace

import "fmt"

// ErrSelfPurchase indicates a player trying to buy their own listing
type ErrSelfPurchase struct {
	ListingID string
}

func (e *ErrSelfPurchase) Error() string {
	return fmt.Sprintf("cannot buy your own listing %s", e.ListingID)
}

// ErrListingExpired indicates a purchase of a listing past its TTL
type ErrListingExpired struct {
	ListingID string
}

func (e *ErrListingExpired) Error() string {
	return fmt.Sprintf("listing %s has expired", e.ListingID)
}
