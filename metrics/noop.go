// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

var Noop Metrics = noopMetrics{}

type noopMetrics struct{}

func (noopMetrics) MarkAccepted(int) {}

func (noopMetrics) MarkRejected(string) {}

func (noopMetrics) MarkFailed(string) {}

func (noopMetrics) MarkBlockApplied(uint64) {}
