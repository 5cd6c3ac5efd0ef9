package providers

import "time"

const (
	// startTimeout bounds the initial reads done while wiring the container.
	startTimeout = 30 * time.Second
)
