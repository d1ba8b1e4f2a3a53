package market

import "errors"

var (
	ErrInvalidVolume      = errors.New("volume must be a positive finite number")
	ErrInvalidRate        = errors.New("rate must be a positive finite number")
	ErrInvalidSide        = errors.New("side must be sell or buy")
	ErrInvalidAssets      = errors.New("market needs two distinct non-empty asset names")
	ErrUnknownOffer       = errors.New("offer not found")
	ErrClearingDegenerate = errors.New("clearing arithmetic produced a non-finite result")
)
