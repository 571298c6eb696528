package service

import "errors"

var (
	ErrInvalidCart = errors.New("no cart exists for the given id")
	ErrEmptyCart   = errors.New("cart is empty, nothing to checkout")
)
