//go:build !linux

package netstat

import "errors"

// StubSampler stands in on platforms without netlink sock-diag.
type StubSampler struct{}

func NewSampler() Sampler {
	return &StubSampler{}
}

func (s *StubSampler) Sample() ([]Port, error) {
	return nil, errors.New("listening-socket sampling is only supported on linux")
}
