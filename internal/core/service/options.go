package service

import "time"

const DefaultTxTimeout = 10 * time.Second

type Options struct {
	// TxTimeout bounds every write transaction. Zero means DefaultTxTimeout.
	TxTimeout time.Duration

	// AllowNegativeStock lets decrements take a quantity below zero.
	AllowNegativeStock bool
}

func (o Options) txTimeout() time.Duration {
	if o.TxTimeout <= 0 {
		return DefaultTxTimeout
	}
	return o.TxTimeout
}
